package telemetry

import "testing"

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_SeedBurst(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: int32(i * 100), Total: 200, DispersedSeeds: 20})
	}

	bookmarks := bd.Check(WindowStats{WindowEndTick: 500, Total: 200, DispersedSeeds: 100})
	if !hasBookmark(bookmarks, BookmarkSeedBurst) {
		t.Errorf("expected seed_burst bookmark, got %v", bookmarks)
	}
}

func TestBookmarkDetector_Crash(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: int32(i * 100), Total: 100})
	}

	bookmarks := bd.Check(WindowStats{WindowEndTick: 500, Total: 50})
	if !hasBookmark(bookmarks, BookmarkCrash) {
		t.Errorf("expected population_crash bookmark, got %v", bookmarks)
	}
}

func TestBookmarkDetector_Recovery(t *testing.T) {
	bd := NewBookmarkDetector(10)

	totals := []uint64{100, 5, 5, 20}
	var last []Bookmark
	for i, total := range totals {
		last = bd.Check(WindowStats{WindowEndTick: int32(i * 100), Total: total})
		if i == 2 && hasBookmark(last, BookmarkRecovery) {
			t.Fatal("recovery reported before the population grew")
		}
	}
	if !hasBookmark(last, BookmarkRecovery) {
		t.Errorf("expected population_recovery bookmark, got %v", last)
	}
}

func TestBookmarkDetector_Extinction(t *testing.T) {
	bd := NewBookmarkDetector(10)

	tests := []struct {
		total uint64
		want  bool
	}{
		{100, false},
		{0, true},
		{0, false}, // reported once per extinction
		{30, false},
		{0, true},
	}
	for i, tt := range tests {
		got := hasBookmark(bd.Check(WindowStats{WindowEndTick: int32(i * 100), Total: tt.total}), BookmarkExtinction)
		if got != tt.want {
			t.Errorf("window %d (total %d): extinction = %v, want %v", i, tt.total, got, tt.want)
		}
	}
}

func TestBookmarkDetector_Stable(t *testing.T) {
	bd := NewBookmarkDetector(10)

	fired := -1
	for i := 0; i < 10; i++ {
		bookmarks := bd.Check(WindowStats{WindowEndTick: int32(i * 100), Total: 100})
		if hasBookmark(bookmarks, BookmarkStable) {
			if fired >= 0 {
				t.Fatalf("stable_population fired twice (windows %d and %d)", fired, i)
			}
			fired = i
		}
	}
	// The variance check needs four windows of history, then five stable
	// windows in a row.
	if fired != 8 {
		t.Errorf("stable_population fired at window %d, want 8", fired)
	}
}

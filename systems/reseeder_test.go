package systems

import (
	"testing"

	"github.com/pthm-cable/treegro/config"
)

func TestReseederSchedule(t *testing.T) {
	cfg := *config.Cfg()
	cfg.Seeding.ReseedInterval = 25
	cfg.Seeding.ReseedCount = 200
	r := NewReseeder(10, 7, 1, &cfg)

	var due []int32
	for tick := int32(0); tick <= 100; tick++ {
		b, ok := r.Due(tick)
		if !ok {
			continue
		}
		due = append(due, tick)
		if b.Count != 200 {
			t.Errorf("tick %d Count = %d, want 200", tick, b.Count)
		}
		if b.X < 0 || b.X >= 10 || b.Y < 0 || b.Y >= 7 {
			t.Errorf("tick %d cell (%d,%d) outside 10x7", tick, b.X, b.Y)
		}
	}
	want := []int32{25, 50, 75, 100}
	if len(due) != len(want) {
		t.Fatalf("due ticks = %v, want %v", due, want)
	}
	for i := range want {
		if due[i] != want[i] {
			t.Errorf("due ticks = %v, want %v", due, want)
			break
		}
	}
}

func TestReseederDeterministic(t *testing.T) {
	cfg := *config.Cfg()
	cfg.Seeding.ReseedInterval = 1
	a := NewReseeder(32, 32, 9, &cfg)
	b := NewReseeder(32, 32, 9, &cfg)
	for tick := int32(1); tick <= 20; tick++ {
		ba, _ := a.Due(tick)
		bb, _ := b.Due(tick)
		if ba != bb {
			t.Fatalf("tick %d: %+v != %+v", tick, ba, bb)
		}
	}
}

func TestReseederDisabled(t *testing.T) {
	tests := []struct {
		name     string
		interval int
		count    uint32
	}{
		{"zero interval", 0, 100},
		{"zero count", 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *config.Cfg()
			cfg.Seeding.ReseedInterval = tt.interval
			cfg.Seeding.ReseedCount = tt.count
			r := NewReseeder(4, 4, 1, &cfg)
			for tick := int32(1); tick <= 50; tick++ {
				if _, ok := r.Due(tick); ok {
					t.Fatalf("Due(%d) fired with interval %d count %d", tick, tt.interval, tt.count)
				}
			}
		})
	}
}

func TestSystemRegistryMatchesPerfPhases(t *testing.T) {
	reg := NewSystemRegistry()
	want := []string{"resource_field", "reseed", "stands", "telemetry"}
	ids := reg.IDs()
	if len(ids) != len(want) {
		t.Fatalf("IDs() = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("IDs()[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
	if got := reg.GetName("stands"); got != "Stands" {
		t.Errorf("GetName(stands) = %q, want Stands", got)
	}
	if got := reg.GetName("missing"); got != "missing" {
		t.Errorf("GetName(missing) = %q, want fallback", got)
	}
	if got := len(reg.ByCategory("environment")); got != 2 {
		t.Errorf("len(ByCategory(environment)) = %d, want 2", got)
	}
}

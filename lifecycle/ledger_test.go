package lifecycle

import (
	"errors"
	"strings"
	"testing"
)

func fullLedger() *tickLedger {
	var l tickLedger
	for f := flow(0); f < numFlows; f++ {
		l.putCount(f, uint32(f))
	}
	return &l
}

func TestLedgerBalanced(t *testing.T) {
	l := fullLedger()
	for f := flow(0); f < numFlows; f++ {
		if got := l.count(f); got != uint32(f) {
			t.Errorf("count(%s) = %d, want %d", f, got, f)
		}
	}
	if err := l.check(); err != nil {
		t.Errorf("check() = %v, want nil", err)
	}
}

func TestLedgerFaults(t *testing.T) {
	tests := []struct {
		name    string
		consume func(l *tickLedger)
		want    string
	}{
		{
			name: "dropped",
			consume: func(l *tickLedger) {
				for f := flow(0); f < numFlows; f++ {
					if f != flowDispersedSeeds {
						l.take(f)
					}
				}
			},
			want: "dispersed_seeds consumed 0 times",
		},
		{
			name: "double counted",
			consume: func(l *tickLedger) {
				for f := flow(0); f < numFlows; f++ {
					l.take(f)
				}
				l.take(flowRecovered)
			},
			want: "recovered consumed 2 times",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := fullLedger()
			tt.consume(l)
			err := l.check()
			if !errors.Is(err, ErrWiring) {
				t.Fatalf("check() = %v, want ErrWiring", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("check() = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLedgerNeverProduced(t *testing.T) {
	var l tickLedger
	l.putCount(flowDeaths, 3)
	l.take(flowDeaths)
	err := l.check()
	if !errors.Is(err, ErrWiring) {
		t.Fatalf("check() = %v, want ErrWiring", err)
	}
	if !strings.Contains(err.Error(), "germinated never produced") {
		t.Errorf("check() = %q", err)
	}

	l.reset()
	if l.produced[flowDeaths] || l.uses[flowDeaths] != 0 {
		t.Error("reset should clear the ledger")
	}
}

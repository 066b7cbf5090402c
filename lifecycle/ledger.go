package lifecycle

import (
	"errors"
	"fmt"
)

// ErrWiring means a per-tick flow was dropped or double-counted.
var ErrWiring = errors.New("life-cycle wiring")

// flow is a quantity computed during a tick that must land in exactly one
// place downstream.
type flow uint8

const (
	flowMaturedSeeds      flow = iota // immature seed loss
	flowGerminated                    // mature seed loss
	flowNewlyMature                   // immature plant loss
	flowDeaths                        // mature plant loss
	flowMortality                     // deaths / mature population
	flowDecomposed                    // snag loss
	flowDispersedSeeds                // dispersing population * dispersion rate
	flowInsertedSeeds                 // externally inserted seeds
	flowFloweringDone                 // flowering loss
	flowFlowerSuccess                 // share of flowering loss that disperses
	flowFlowerFailure                 // share of flowering loss that recovers
	flowFlowerRecovered               // flower-recovering loss
	flowDisperseRecovered             // disperse-recovering loss
	flowRecovered                     // both recovery losses
	flowDispersalDone                 // dispersing loss

	numFlows
)

var flowNames = [numFlows]string{
	"matured_seeds", "germinated", "newly_mature", "deaths", "mortality",
	"decomposed", "dispersed_seeds", "inserted_seeds", "flowering_done",
	"flower_success", "flower_failure", "flower_recovered",
	"disperse_recovered", "recovered", "dispersal_done",
}

func (f flow) String() string {
	if f >= numFlows {
		return fmt.Sprintf("flow(%d)", uint8(f))
	}
	return flowNames[f]
}

// tickLedger records every flow produced in a tick and how often it was
// consumed. check fails unless each flow was produced and consumed once.
type tickLedger struct {
	values   [numFlows]float64
	produced [numFlows]bool
	uses     [numFlows]uint8
}

func (l *tickLedger) reset() {
	*l = tickLedger{}
}

func (l *tickLedger) put(f flow, v float64) {
	l.values[f] = v
	l.produced[f] = true
}

func (l *tickLedger) putCount(f flow, n uint32) {
	l.put(f, float64(n))
}

func (l *tickLedger) take(f flow) float64 {
	l.uses[f]++
	return l.values[f]
}

func (l *tickLedger) count(f flow) uint32 {
	return uint32(l.take(f))
}

func (l *tickLedger) check() error {
	var errs []error
	for f := flow(0); f < numFlows; f++ {
		switch {
		case !l.produced[f]:
			errs = append(errs, fmt.Errorf("%s never produced", f))
		case l.uses[f] != 1:
			errs = append(errs, fmt.Errorf("%s consumed %d times", f, l.uses[f]))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrWiring, errors.Join(errs...))
}

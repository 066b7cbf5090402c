package lifecycle

import (
	"fmt"

	"github.com/pthm-cable/treegro/param"
)

// Stage names a population held by a Machine.
type Stage int

const (
	ImmatureSeeds Stage = iota
	MatureSeeds
	DormantSeeds // counter; dormant seeds do not age
	ImmaturePlants
	MaturePlants
	ReadyToFlower // counter
	FloweringPlants
	FlowerRecoveringPlants
	DispersingPlants
	DisperseRecoveringPlants
	Snags

	numStages
)

var stageNames = [numStages]string{
	ImmatureSeeds:            "immature_seeds",
	MatureSeeds:              "mature_seeds",
	DormantSeeds:             "dormant_seeds",
	ImmaturePlants:           "immature_plants",
	MaturePlants:             "mature_plants",
	ReadyToFlower:            "ready_to_flower",
	FloweringPlants:          "flowering_plants",
	FlowerRecoveringPlants:   "flower_recovering_plants",
	DispersingPlants:         "dispersing_plants",
	DisperseRecoveringPlants: "disperse_recovering_plants",
	Snags:                    "snags",
}

func (s Stage) String() string {
	if s < 0 || s >= numStages {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// Stages returns every stage in declaration order.
func Stages() []Stage {
	out := make([]Stage, numStages)
	for i := range out {
		out[i] = Stage(i)
	}
	return out
}

// periodOf maps each pipe-backed stage to the parameter holding its period.
// Counter stages are absent.
var periodOf = map[Stage]param.ID{
	ImmatureSeeds:            param.SeedMaturationPeriod,
	MatureSeeds:              param.SeedGerminationPeriod,
	ImmaturePlants:           param.PlantMaturationPeriod,
	MaturePlants:             param.MaturePlantLifePeriod,
	FloweringPlants:          param.FloweringPeriod,
	FlowerRecoveringPlants:   param.FloweringRecoveryPeriod,
	DispersingPlants:         param.DispersionPeriod,
	DisperseRecoveringPlants: param.DispersionRecoveryPeriod,
	Snags:                    param.SnagDecompositionPeriod,
}

// pipeStages lists the pipe-backed stages in declaration order.
var pipeStages = [...]Stage{
	ImmatureSeeds,
	MatureSeeds,
	ImmaturePlants,
	MaturePlants,
	FloweringPlants,
	FlowerRecoveringPlants,
	DispersingPlants,
	DisperseRecoveringPlants,
	Snags,
}

// isPipe reports whether a stage is backed by a CohortPipe.
func (s Stage) isPipe() bool {
	_, ok := periodOf[s]
	return ok
}

// counted reports whether a stage holds distinct individuals. Flowering,
// dispersing and recovering plants are states of mature plants and are not
// counted again.
func (s Stage) counted() bool {
	switch s {
	case ImmatureSeeds, MatureSeeds, DormantSeeds, ImmaturePlants, MaturePlants, Snags:
		return true
	}
	return false
}

// culledStages follow mature-plant mortality: they hold mature plants in a
// particular reproductive state.
var culledStages = [...]Stage{
	FloweringPlants,
	FlowerRecoveringPlants,
	DispersingPlants,
	DisperseRecoveringPlants,
}

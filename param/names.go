package param

import "fmt"

// ID names a life-cycle control parameter.
type ID int

const (
	SeedMaturationPeriod ID = iota
	SeedGerminationConditions
	SeedGerminationPeriod
	PlantMaturationPeriod
	FloweringConditions
	FloweringPeriod
	FloweringRecoveryPeriod
	FloweringSuccessRatio
	DispersionRate
	DispersionPeriod
	DispersionRecoveryPeriod
	MaturePlantLifePeriod
	MinimumSurvivalConditions
	SnagDecompositionPeriod

	// NumParams is the number of parameters.
	NumParams
)

var names = [NumParams]string{
	SeedMaturationPeriod:      "seed_maturation_period",
	SeedGerminationConditions: "seed_germination_conditions",
	SeedGerminationPeriod:     "seed_germination_period",
	PlantMaturationPeriod:     "plant_maturation_period",
	FloweringConditions:       "flowering_conditions",
	FloweringPeriod:           "flowering_period",
	FloweringRecoveryPeriod:   "flowering_recovery_period",
	FloweringSuccessRatio:     "flowering_success_ratio",
	DispersionRate:            "dispersion_rate",
	DispersionPeriod:          "dispersion_period",
	DispersionRecoveryPeriod:  "dispersion_recovery_period",
	MaturePlantLifePeriod:     "mature_plant_life_period",
	MinimumSurvivalConditions: "minimum_survival_conditions",
	SnagDecompositionPeriod:   "snag_decomposition_period",
}

// Valid reports whether id names a parameter.
func (id ID) Valid() bool {
	return id >= 0 && id < NumParams
}

func (id ID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("param(%d)", int(id))
	}
	return names[id]
}

// ParseID returns the parameter with the given snake_case name.
func ParseID(name string) (ID, error) {
	for id, n := range names {
		if n == name {
			return ID(id), nil
		}
	}
	return 0, fmt.Errorf("%q: %w", name, ErrUnknownParameter)
}

// IDs returns every parameter in declaration order.
func IDs() []ID {
	ids := make([]ID, NumParams)
	for i := range ids {
		ids[i] = ID(i)
	}
	return ids
}

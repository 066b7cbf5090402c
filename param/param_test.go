package param

import (
	"errors"
	"math"
	"testing"
)

func TestProject(t *testing.T) {
	m := NewMatrix(2)
	if err := m.SetRow(FloweringPeriod, []float64{2, -1, 3}); err != nil {
		t.Fatal(err)
	}
	if err := m.SetRow(DispersionRate, []float64{0.5, 0.25, 0}); err != nil {
		t.Fatal(err)
	}

	v, err := Project(m, NewResourceVector(4, 2))
	if err != nil {
		t.Fatalf("Project: %v", err)
	}

	tests := []struct {
		id   ID
		want float64
	}{
		{FloweringPeriod, 2*4 - 1*2 + 3},
		{DispersionRate, 0.5*4 + 0.25*2},
		{SeedMaturationPeriod, 0},
	}
	for _, tt := range tests {
		if got := v.Float(tt.id); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Float(%s) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestProjectOffsetOnly(t *testing.T) {
	m := NewMatrix(0)
	if err := m.SetRow(SnagDecompositionPeriod, []float64{10}); err != nil {
		t.Fatal(err)
	}
	v, err := Project(m, NewResourceVector())
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if got := v.Float(SnagDecompositionPeriod); got != 10 {
		t.Errorf("offset-only projection = %v, want 10", got)
	}
}

func TestProjectDimensionMismatch(t *testing.T) {
	m := NewMatrix(4)
	if _, err := Project(m, NewResourceVector(1, 2)); !errors.Is(err, ErrDimension) {
		t.Errorf("Project with short vector error = %v, want ErrDimension", err)
	}
	if err := m.SetRow(FloweringPeriod, []float64{1, 2}); !errors.Is(err, ErrDimension) {
		t.Errorf("SetRow with short row error = %v, want ErrDimension", err)
	}
	if err := m.SetRow(ID(99), []float64{1, 2, 3, 4, 5}); !errors.Is(err, ErrUnknownParameter) {
		t.Errorf("SetRow with bad id error = %v, want ErrUnknownParameter", err)
	}
}

func TestUint(t *testing.T) {
	v := Constant(map[ID]float64{
		SeedMaturationPeriod:    3.9,
		FloweringPeriod:         -0.1,
		DispersionPeriod:        0,
		MaturePlantLifePeriod:   math.NaN(),
		SnagDecompositionPeriod: 1e12,
	})

	tests := []struct {
		id      ID
		want    uint32
		wantErr error
	}{
		{SeedMaturationPeriod, 3, nil},
		{DispersionPeriod, 0, nil},
		{FloweringPeriod, 0, ErrNegativeParameter},
		{MaturePlantLifePeriod, 0, ErrNegativeParameter},
		{SnagDecompositionPeriod, 0, ErrParameterRange},
	}
	for _, tt := range tests {
		t.Run(tt.id.String(), func(t *testing.T) {
			got, err := v.Uint(tt.id)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Uint(%s) error = %v, want %v", tt.id, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Uint(%s) = %d, want %d", tt.id, got, tt.want)
			}
		})
	}
}

func TestMatrixFromRows(t *testing.T) {
	m, err := MatrixFromRows(map[string][]float64{
		"flowering_period":        {1, 0, 2},
		"flowering_success_ratio": {0, 0, 0.8},
	}, 2)
	if err != nil {
		t.Fatalf("MatrixFromRows: %v", err)
	}
	if got := m.Row(FloweringPeriod); got[0] != 1 || got[2] != 2 {
		t.Errorf("Row(FloweringPeriod) = %v", got)
	}
	if got := m.Row(SeedMaturationPeriod); got[0] != 0 || got[1] != 0 || got[2] != 0 {
		t.Errorf("missing row should stay zero, got %v", got)
	}

	if _, err := MatrixFromRows(map[string][]float64{"bloom": {1, 2, 3}}, 2); !errors.Is(err, ErrUnknownParameter) {
		t.Errorf("unknown name error = %v, want ErrUnknownParameter", err)
	}
}

func TestNames(t *testing.T) {
	for _, id := range IDs() {
		got, err := ParseID(id.String())
		if err != nil {
			t.Fatalf("ParseID(%q): %v", id.String(), err)
		}
		if got != id {
			t.Errorf("ParseID(%q) = %v, want %v", id.String(), got, id)
		}
	}
	if len(IDs()) != 14 {
		t.Errorf("len(IDs()) = %d, want 14", len(IDs()))
	}
}

func TestResourceVector(t *testing.T) {
	rv := NewResourceVector(0.1, 0.2, 0.3)
	if rv.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", rv.Len())
	}
	rv.Set(1, 0.9)
	if got := rv.Level(1); got != 0.9 {
		t.Errorf("Level(1) = %v, want 0.9", got)
	}
	levels := rv.Levels()
	levels[0] = 5
	if rv.Level(0) != 0.1 {
		t.Error("Levels() should return a copy")
	}

	var zero ResourceVector
	if zero.Len() != 0 {
		t.Errorf("zero vector Len() = %d, want 0", zero.Len())
	}
}

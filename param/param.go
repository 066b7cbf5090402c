// Package param maps environmental resource levels onto the control
// parameters of the plant life cycle. Each parameter is an affine function of
// the resource vector: a row of weights plus a constant offset.
package param

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrNegativeParameter is returned when a negative value is read as a count or period.
	ErrNegativeParameter = errors.New("parameter is negative")
	// ErrParameterRange is returned when a value does not fit a uint32 count.
	ErrParameterRange = errors.New("parameter out of range")
	// ErrDimension is returned when weights or resource vectors have the wrong width.
	ErrDimension = errors.New("dimension mismatch")
	// ErrUnknownParameter is returned for names that do not match an ID.
	ErrUnknownParameter = errors.New("unknown parameter")
)

// Matrix holds one row of weights per parameter. Rows have one column per
// resource plus a trailing offset column.
type Matrix struct {
	numResources int
	weights      *mat.Dense
}

// NewMatrix returns an all-zero matrix for numResources resource channels.
func NewMatrix(numResources int) *Matrix {
	if numResources < 0 {
		numResources = 0
	}
	return &Matrix{
		numResources: numResources,
		weights:      mat.NewDense(int(NumParams), numResources+1, nil),
	}
}

// MatrixFromRows builds a matrix from rows keyed by parameter name.
// Parameters without a row stay at zero.
func MatrixFromRows(rows map[string][]float64, numResources int) (*Matrix, error) {
	m := NewMatrix(numResources)
	for name, weights := range rows {
		id, err := ParseID(name)
		if err != nil {
			return nil, err
		}
		if err := m.SetRow(id, weights); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// NumResources returns the number of resource channels the matrix expects.
func (m *Matrix) NumResources() int {
	return m.numResources
}

// SetRow replaces the weights of one parameter. weights must have
// NumResources()+1 entries, the last being the offset.
func (m *Matrix) SetRow(id ID, weights []float64) error {
	if !id.Valid() {
		return fmt.Errorf("setting row %d: %w", int(id), ErrUnknownParameter)
	}
	if len(weights) != m.numResources+1 {
		return fmt.Errorf("row %s has %d weights, want %d: %w", id, len(weights), m.numResources+1, ErrDimension)
	}
	m.weights.SetRow(int(id), weights)
	return nil
}

// Row returns a copy of the weights of one parameter.
func (m *Matrix) Row(id ID) []float64 {
	return mat.Row(nil, int(id), m.weights)
}

// ResourceVector holds resource levels followed by a fixed 1.0 so the offset
// column takes part in the projection.
type ResourceVector struct {
	columns []float64
}

// NewResourceVector returns a vector with the given levels.
func NewResourceVector(levels ...float64) ResourceVector {
	columns := make([]float64, len(levels)+1)
	copy(columns, levels)
	columns[len(levels)] = 1
	return ResourceVector{columns: columns}
}

// Len returns the number of resource levels, excluding the offset.
func (rv ResourceVector) Len() int {
	if len(rv.columns) == 0 {
		return 0
	}
	return len(rv.columns) - 1
}

// Level returns resource level i.
func (rv ResourceVector) Level(i int) float64 {
	return rv.columns[i]
}

// Set changes resource level i.
func (rv ResourceVector) Set(i int, v float64) {
	if i >= rv.Len() {
		panic(fmt.Sprintf("param: resource index %d out of range [0,%d)", i, rv.Len()))
	}
	rv.columns[i] = v
}

// Levels returns a copy of the resource levels.
func (rv ResourceVector) Levels() []float64 {
	out := make([]float64, rv.Len())
	copy(out, rv.columns)
	return out
}

func (rv ResourceVector) vec() *mat.VecDense {
	if len(rv.columns) == 0 {
		return mat.NewVecDense(1, []float64{1})
	}
	return mat.NewVecDense(len(rv.columns), rv.columns)
}

// Vector holds the resolved value of every parameter.
type Vector struct {
	values [NumParams]float64
}

// Constant returns a Vector with the given values; missing parameters are zero.
func Constant(values map[ID]float64) Vector {
	var v Vector
	for id, x := range values {
		if id.Valid() {
			v.values[id] = x
		}
	}
	return v
}

// Project evaluates every parameter row against rv.
func Project(m *Matrix, rv ResourceVector) (Vector, error) {
	if rv.Len() != m.numResources {
		return Vector{}, fmt.Errorf("projecting %d resources onto %d-resource matrix: %w",
			rv.Len(), m.numResources, ErrDimension)
	}
	var out mat.VecDense
	out.MulVec(m.weights, rv.vec())

	var v Vector
	for i := range v.values {
		v.values[i] = out.AtVec(i)
	}
	return v, nil
}

// Float returns the raw value of a parameter.
func (v Vector) Float(id ID) float64 {
	return v.values[id]
}

// Uint returns a parameter truncated to a count. Negative values are a
// configuration error and are never clamped.
func (v Vector) Uint(id ID) (uint32, error) {
	x := v.values[id]
	switch {
	case math.IsNaN(x) || x < 0:
		return 0, fmt.Errorf("%s = %v: %w", id, x, ErrNegativeParameter)
	case x >= math.MaxUint32+1:
		return 0, fmt.Errorf("%s = %v: %w", id, x, ErrParameterRange)
	}
	return uint32(x), nil
}

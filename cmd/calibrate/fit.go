package main

import (
	"math"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/treegro/distrib"
)

// Approximation names one closed-form stand-in for the normal CDF and the
// constant that shapes it.
type Approximation struct {
	Name    string
	Shipped float64                    // constant compiled into distrib
	CDF     func(c, z float64) float64 // standard normal CDF estimate at z using constant c
}

// Approximations lists the curves calibrated by this tool.
var Approximations = []Approximation{
	{
		Name:    "logistic_slope",
		Shipped: distrib.LogisticSlope,
		CDF: func(k, z float64) float64 {
			return 1 / (1 + math.Exp(-k*z))
		},
	},
	{
		Name:    "smoothstep_width",
		Shipped: distrib.SmoothstepWidth,
		CDF: func(w, z float64) float64 {
			return distrib.Smoothstep(z/w + 0.5)
		},
	},
}

// Grid returns n evenly spaced points over [-span, span].
func Grid(span float64, n int) []float64 {
	if n < 2 {
		return []float64{0}
	}
	zs := make([]float64, n)
	step := 2 * span / float64(n-1)
	for i := range zs {
		zs[i] = -span + float64(i)*step
	}
	return zs
}

// MaxError returns the largest absolute deviation of a from the exact normal
// CDF over the grid.
func (a Approximation) MaxError(c float64, grid []float64) float64 {
	var worst float64
	for _, z := range grid {
		if d := math.Abs(a.CDF(c, z) - distuv.UnitNormal.CDF(z)); d > worst {
			worst = d
		}
	}
	return worst
}

// FitResult is the outcome of one calibration.
type FitResult struct {
	Name         string
	Shipped      float64
	ShippedError float64
	Fitted       float64
	FittedError  float64
	Evaluations  int
}

// Fit searches for the constant minimizing MaxError with Nelder-Mead, starting
// from the shipped value. Non-positive constants are rejected with +Inf.
func (a Approximation) Fit(grid []float64, maxEvals int) (FitResult, error) {
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			if x[0] <= 0 {
				return math.Inf(1)
			}
			return a.MaxError(x[0], grid)
		},
	}
	settings := &optimize.Settings{
		FuncEvaluations: maxEvals,
	}

	res := FitResult{
		Name:         a.Name,
		Shipped:      a.Shipped,
		ShippedError: a.MaxError(a.Shipped, grid),
	}
	result, err := optimize.Minimize(problem, []float64{a.Shipped}, settings, &optimize.NelderMead{})
	if result != nil {
		res.Fitted = result.X[0]
		res.FittedError = result.F
		res.Evaluations = result.FuncEvaluations
	}
	return res, err
}

// ErrorRow is one line of calibration.csv.
type ErrorRow struct {
	Z               float64 `csv:"z"`
	Normal          float64 `csv:"normal_cdf"`
	LogisticError   float64 `csv:"logistic_error"`
	SmoothstepError float64 `csv:"smoothstep_error"`
}

// ErrorTable evaluates the signed error of both shipped approximations at
// every grid point.
func ErrorTable(grid []float64) []*ErrorRow {
	rows := make([]*ErrorRow, len(grid))
	for i, z := range grid {
		exact := distuv.UnitNormal.CDF(z)
		rows[i] = &ErrorRow{
			Z:               z,
			Normal:          exact,
			LogisticError:   distrib.CDF(0, 1, z) - exact,
			SmoothstepError: (1 - distrib.SmoothstepTail(0, 1, z)) - exact,
		}
	}
	return rows
}

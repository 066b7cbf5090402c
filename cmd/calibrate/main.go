// Package main fits the constants of the closed-form normal CDF
// approximations against the exact CDF and writes the error table.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

func main() {
	// CLI flags
	outputDir := flag.String("output", "", "Output directory for calibration.csv")
	span := flag.Float64("span", 6, "Evaluate z over [-span, span]")
	points := flag.Int("points", 1201, "Number of grid points")
	maxEvals := flag.Int("max-evals", 500, "Maximum function evaluations per fit")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	grid := Grid(*span, *points)

	fmt.Printf("Fitting against the normal CDF on %d points over [-%g, %g]\n\n", len(grid), *span, *span)
	for _, a := range Approximations {
		res, err := a.Fit(grid, *maxEvals)
		if err != nil {
			log.Printf("%s: optimization ended: %v", a.Name, err)
		}
		fmt.Printf("%s:\n", res.Name)
		fmt.Printf("  shipped: %.5f (max error %.5f)\n", res.Shipped, res.ShippedError)
		fmt.Printf("  fitted:  %.5f (max error %.5f, %d evaluations)\n", res.Fitted, res.FittedError, res.Evaluations)
	}

	outPath := filepath.Join(*outputDir, "calibration.csv")
	f, err := os.Create(outPath)
	if err != nil {
		log.Fatalf("failed to create %s: %v", outPath, err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(ErrorTable(grid), f); err != nil {
		log.Fatalf("failed to write %s: %v", outPath, err)
	}
	fmt.Printf("\nError table saved to: %s\n", outPath)
}

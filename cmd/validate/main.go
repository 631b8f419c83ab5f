// Command validate re-checks a cleaned traffic CSV on disk: required
// columns, no missing values, no excluded vehicle rows, weekday/hour sort
// order, and derived columns that agree with their sources. With -raw it
// also checks that cleaning did not add rows.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -cleaned data/traffic_data_cleaned.csv \
//	  -raw data/futuristic_city_traffic.csv \
//	  -excluded "Flying Car"
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/couchcryptid/traffic-insights/internal/adapter/csvfile"
	"github.com/couchcryptid/traffic-insights/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	cleanedPath := flag.String("cleaned", "", "path to the cleaned CSV")
	rawPath := flag.String("raw", "", "optional path to the raw CSV the cleaned file came from")
	excluded := flag.String("excluded", domain.FlyingCar, "vehicle type that must not appear")
	flag.Parse()

	if *cleanedPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*cleanedPath, *rawPath, *excluded))
}

func run(cleanedPath, rawPath, excluded string) int {
	fmt.Println("=== Cleaned Traffic Data Validation ===")
	fmt.Println()

	cleaned, err := readTable(cleanedPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load cleaned CSV: %v\n", err)
		return 1
	}

	rawRows := -1
	if rawPath != "" {
		raw, err := readTable(rawPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load raw CSV: %v\n", err)
			return 1
		}
		rawRows = raw.Len()
	}

	phases := validate(cleaned, excluded, rawRows)

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-36s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d cleaned", cleaned.Len())
	if rawRows >= 0 {
		fmt.Printf(", %d raw", rawRows)
	}
	fmt.Println()

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func readTable(path string) (domain.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Table{}, err
	}
	defer f.Close()
	return csvfile.Decode(f)
}

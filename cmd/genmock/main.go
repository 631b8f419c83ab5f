// Command genmock writes a synthetic raw traffic dataset with the same
// columns as the real one, including incomplete rows and excluded vehicle
// types, so the analysis can be exercised end to end without the full
// data file.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out data/futuristic_city_traffic.csv \
//	  -rows 5000 -seed 42 -missing-rate 0.02
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"

	"github.com/couchcryptid/traffic-insights/internal/adapter/csvfile"
	"github.com/couchcryptid/traffic-insights/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the raw CSV dataset")
	rows := flag.Int("rows", 1000, "number of rows to generate")
	seed := flag.Uint64("seed", 42, "random seed")
	missingRate := flag.Float64("missing-rate", 0.02, "fraction of rows with one blank cell")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if *rows <= 0 {
		return fmt.Errorf("-rows must be positive, got %d", *rows)
	}
	if *missingRate < 0 || *missingRate > 1 {
		return fmt.Errorf("-missing-rate must be within [0,1], got %g", *missingRate)
	}

	tbl, err := generate(genOptions{Rows: *rows, Seed: *seed, MissingRate: *missingRate})
	if err != nil {
		return err
	}

	w := csvfile.NewWriter(*out, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := w.Write(context.Background(), tbl); err != nil {
		return fmt.Errorf("writing dataset: %w", err)
	}
	log.Printf("wrote %d rows to %s", tbl.Len(), *out)

	printStats(tbl)
	return nil
}

func printStats(tbl domain.Table) {
	for _, c := range domain.MissingCounts(tbl) {
		if c.Count > 0 {
			log.Printf("missing %-22s %d", c.Column, c.Count)
		}
	}

	groups, err := tbl.GroupBy(domain.ColVehicleType)
	if err != nil {
		return
	}
	for _, g := range groups {
		log.Printf("vehicle %-22s %d", g.Key, g.Rows.Len())
	}
}

// Command inspect checks the Parquet artifacts produced by the scraper: every
// year from the start year through the current year should have a readable
// file with at least one row and the A652 station preamble.
//
// Usage:
//
//	go run ./cmd/inspect --output-dir rio_a652_station_data --start-year 2019
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/couchcryptid/inmet-scraper/internal/adapter/parquetfile"
	"github.com/couchcryptid/inmet-scraper/internal/domain"
)

// phase tracks pass/fail for an inspection phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	outputDir := flag.String("output-dir", "rio_a652_station_data", "directory holding Parquet artifacts")
	startYear := flag.Int("start-year", 2019, "first year expected on disk")
	flag.Parse()

	os.Exit(run(context.Background(), os.Stdout, *outputDir, *startYear, domain.CurrentYear()))
}

func run(ctx context.Context, w io.Writer, outputDir string, startYear, endYear int) int {
	fmt.Fprintln(w, "=== A652 Artifact Inspection ===")
	fmt.Fprintln(w)

	summaries, missing := loadSummaries(ctx, outputDir, startYear, endYear)

	phases := []*phase{
		checkCoverage(missing),
		checkReadable(summaries),
		checkStation(summaries),
	}

	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-30s %s\n", p.name, status)
	}

	fmt.Fprintln(w)
	years := make([]int, 0, len(summaries))
	for y := range summaries {
		years = append(years, y)
	}
	sort.Ints(years)
	for _, y := range years {
		s := summaries[y]
		if s.err != nil {
			continue
		}
		fmt.Fprintf(w, "%d: %d rows, %d columns (%s)\n", y, s.Rows, len(s.Columns), s.Path)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll checks passed.")
		return 0
	}
	fmt.Fprintln(w, "\nInspection FAILED.")
	return 1
}

type yearSummary struct {
	parquetfile.Summary
	err error
}

func loadSummaries(ctx context.Context, outputDir string, startYear, endYear int) (map[int]yearSummary, []int) {
	summaries := make(map[int]yearSummary)
	var missing []int
	for year := startYear; year <= endYear; year++ {
		path := domain.OutputPath(outputDir, year)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			missing = append(missing, year)
			continue
		}
		s, err := parquetfile.Inspect(ctx, path)
		summaries[year] = yearSummary{Summary: s, err: err}
	}
	return summaries, missing
}

func checkCoverage(missing []int) *phase {
	p := &phase{name: "Year coverage"}
	for _, y := range missing {
		p.errorf("%d: no artifact", y)
	}
	return p
}

func checkReadable(summaries map[int]yearSummary) *phase {
	p := &phase{name: "Parquet readability"}
	for y, s := range summaries {
		switch {
		case s.err != nil:
			p.errorf("%d: %v", y, s.err)
		case s.Rows == 0:
			p.errorf("%d: no rows", y)
		}
	}
	sort.Strings(p.errors)
	return p
}

func checkStation(summaries map[int]yearSummary) *phase {
	p := &phase{name: "Station preamble"}
	for y, s := range summaries {
		if s.err != nil {
			continue
		}
		code := s.Metadata["CODIGO (WMO)"]
		if !strings.EqualFold(code, domain.StationCode) {
			p.errorf("%d: station code %q, want %s", y, code, domain.StationCode)
		}
	}
	sort.Strings(p.errors)
	return p
}

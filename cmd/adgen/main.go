package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"trendspotter/internal/testkit"
)

// adgen writes a synthetic campaign dataset for trying the UI without real data
func main() {
	out := flag.String("out", "campaigns.xlsx", "output file path")
	days := flag.Int("days", 90, "number of days per campaign")
	format := flag.String("format", "", "output format: xlsx or csv (default inferred from -out)")
	seed := flag.Int64("seed", 42, "RNG seed (deterministic)")
	start := flag.String("start", "2024-01-01", "start date (YYYY-MM-DD)")
	campaigns := flag.String("campaigns", "", "comma-separated campaign names (default: four sample campaigns)")
	missing := flag.Float64("missing", 0.02, "share of metric cells left blank")
	duplicates := flag.Int("duplicates", 5, "number of duplicated rows to append")
	flag.Parse()

	startDate, err := time.ParseInLocation("2006-01-02", *start, time.UTC)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid -start (expected YYYY-MM-DD):", err)
		os.Exit(2)
	}

	fmtName := strings.ToLower(strings.TrimSpace(*format))
	if fmtName == "" {
		fmtName = "xlsx"
		if strings.ToLower(filepath.Ext(*out)) == ".csv" {
			fmtName = "csv"
		}
	}

	cfg := testkit.DefaultCampaignConfig()
	cfg.Days = *days
	cfg.Seed = *seed
	cfg.StartDate = startDate
	cfg.MissingRate = *missing
	cfg.DuplicateRows = *duplicates
	if *campaigns != "" {
		cfg.Campaigns = strings.Split(*campaigns, ",")
	}

	ds, err := testkit.GenerateCampaigns(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error generating dataset:", err)
		os.Exit(2)
	}

	var data []byte
	switch fmtName {
	case "csv":
		data, err = ds.CSV()
	case "xlsx":
		data, err = ds.XLSX()
	default:
		fmt.Fprintln(os.Stderr, "unsupported format:", fmtName)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error encoding %s: %v\n", fmtName, err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "error writing output:", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %s\n", *out)
	fmt.Printf("Total Columns: %d | Total Rows: %d\n", len(ds.Headers), len(ds.Rows))
}

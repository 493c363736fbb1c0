// Package testkit generates synthetic AdTech campaign data for tests and demos.
package testkit

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

// CampaignHeaders is the column layout of every generated dataset
var CampaignHeaders = []string{"date", "campaign", "impressions", "clicks", "conversions", "cost"}

// CampaignConfig configures the campaign data generator
type CampaignConfig struct {
	Days      int       `json:"days"`
	Campaigns []string  `json:"campaigns"`
	StartDate time.Time `json:"start_date"`
	Seed      int64     `json:"seed"`

	// MissingRate blanks that share of metric cells
	MissingRate float64 `json:"missing_rate"`
	// DuplicateRows appends that many exact copies of earlier rows
	DuplicateRows int `json:"duplicate_rows"`
	// ConversionLagDays delays the effect of clicks on conversions
	ConversionLagDays int `json:"conversion_lag_days"`
}

// DefaultCampaignConfig returns sensible defaults for campaign data generation
func DefaultCampaignConfig() CampaignConfig {
	return CampaignConfig{
		Days:              30,
		Campaigns:         []string{"search_brand", "search_generic", "social_prospecting", "display_retargeting"},
		StartDate:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Seed:              42,
		ConversionLagDays: 2,
	}
}

// Campaigns is one generated table. Rows hold already formatted strings,
// with "" for missing cells.
type Campaigns struct {
	Headers []string
	Rows    [][]string

	// Clicks and Conversions keep the unrounded series per row for assertions
	Clicks      []float64
	Conversions []float64
}

// GenerateCampaigns produces one row per campaign per day. Spend is higher
// on weekends, clicks follow spend, and conversions follow clicks from
// ConversionLagDays earlier.
func GenerateCampaigns(cfg CampaignConfig) (*Campaigns, error) {
	if cfg.Days <= 0 {
		return nil, fmt.Errorf("days must be > 0")
	}
	if len(cfg.Campaigns) == 0 {
		return nil, fmt.Errorf("at least one campaign is required")
	}
	if cfg.MissingRate < 0 || cfg.MissingRate >= 1 {
		return nil, fmt.Errorf("missing rate must be in [0, 1)")
	}
	if cfg.ConversionLagDays < 0 {
		return nil, fmt.Errorf("conversion lag must be >= 0")
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	out := &Campaigns{Headers: append([]string(nil), CampaignHeaders...)}

	for c, name := range cfg.Campaigns {
		// each campaign gets its own efficiency
		ctr := 0.01 + 0.01*float64(c%4) + rng.Float64()*0.005
		cvr := 0.02 + rng.Float64()*0.06
		cpc := 0.4 + rng.Float64()*1.6

		clicks := make([]float64, cfg.Days)
		for d := 0; d < cfg.Days; d++ {
			day := cfg.StartDate.AddDate(0, 0, d)

			budget := 200 + rng.Float64()*800
			if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
				budget *= 1.4
			}
			clicks[d] = math.Max(0, math.Round(budget/cpc+rng.NormFloat64()*5))
			impressions := math.Round(clicks[d] / ctr)
			cost := clicks[d] * cpc

			source := clicks[d]
			if d >= cfg.ConversionLagDays {
				source = clicks[d-cfg.ConversionLagDays]
			}
			conversions := math.Max(0, math.Round(source*cvr+rng.NormFloat64()))

			row := []string{
				day.Format("2006-01-02"),
				name,
				formatFloat(impressions, 0),
				formatFloat(clicks[d], 0),
				formatFloat(conversions, 0),
				formatFloat(cost, 2),
			}
			for j := 2; j < len(row); j++ {
				if cfg.MissingRate > 0 && rng.Float64() < cfg.MissingRate {
					row[j] = ""
				}
			}

			out.Rows = append(out.Rows, row)
			out.Clicks = append(out.Clicks, clicks[d])
			out.Conversions = append(out.Conversions, conversions)
		}
	}

	for i := 0; i < cfg.DuplicateRows; i++ {
		src := rng.Intn(len(out.Rows))
		out.Rows = append(out.Rows, append([]string(nil), out.Rows[src]...))
		out.Clicks = append(out.Clicks, out.Clicks[src])
		out.Conversions = append(out.Conversions, out.Conversions[src])
	}

	return out, nil
}

// CSV encodes the table as comma-separated text with a header line
func (c *Campaigns) CSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(c.Headers); err != nil {
		return nil, err
	}
	if err := w.WriteAll(c.Rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// XLSX encodes the table as a single-sheet workbook. Numeric cells are
// written as numbers so spreadsheet readers see real values.
func (c *Campaigns) XLSX() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, h := range c.Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for r, row := range c.Rows {
		for col, v := range row {
			if v == "" {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(col+1, r+2)
			var value interface{} = v
			if num, err := strconv.ParseFloat(v, 64); err == nil && col >= 2 {
				value = num
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatFloat(x float64, decimals int) string {
	p := math.Pow10(decimals)
	x = math.Round(x*p) / p
	return strconv.FormatFloat(x, 'f', decimals, 64)
}

package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/rageagainstthemanchine/Overtime-Orchestrator/internal/contract"
	"github.com/rageagainstthemanchine/Overtime-Orchestrator/internal/parquet"
	"github.com/rageagainstthemanchine/Overtime-Orchestrator/schema"
)

// summaryRow is the JSON render model for one day of the report.
type summaryRow struct {
	Date         string   `json:"date"`
	Weekday      string   `json:"weekday"`
	HoursExtra   float64  `json:"hours_extra_estimated"`
	LunchPenalty bool     `json:"lunch_penalty"`
	Examples     []string `json:"examples"`
}

// PrintSummary outputs the per-day report, dispatching based on the output format configured.
func PrintSummary(result *schema.ReportResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, summaryRows(result))
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSummaryCSV(w, result)
		}, "Wrote CSV")
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return fmt.Errorf("parquet output requires --output-file")
		}
		if err := parquet.WriteSummaryParquet(summaryParquetRows(result), cfg.OutputFile); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
		return nil
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSummaryTable(result, cfg, duration, w)
		}, "Wrote table")
	}
}

// writeSummaryTable generates and writes the human-readable table.
func writeSummaryTable(result *schema.ReportResult, cfg *contract.Config, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Date", "Day", "Hours", "Label", "Notes"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignLeft
	})

	label := contract.GetPlainLabel
	if cfg.UseColor {
		label = contract.GetColorLabel
	}

	var total float64
	var data [][]string
	for _, day := range result.Days {
		total += day.HoursExtra
		data = append(data, []string{
			day.Date.Format(contract.DateFormat),
			day.Date.Weekday().String(),
			strconv.FormatFloat(day.HoursExtra, 'f', 2, 64),
			label(day.HoursExtra),
			strings.Join(day.SampleNotes, "; "),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Fprintf(writer, "\nDays flagged: %d | Estimated extra: %.2fh | Took %s\n",
		len(result.Days), total, duration.Round(time.Millisecond))
	return nil
}

// writeSummaryCSV writes the machine-readable summary.
func writeSummaryCSV(w io.Writer, result *schema.ReportResult) error {
	header := []string{"date", "weekday", "hours_extra_estimated", "examples"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, day := range result.Days {
			row := []string{
				day.Date.Format(contract.DateFormat),
				day.Date.Weekday().String(),
				strconv.FormatFloat(day.HoursExtra, 'f', 2, 64),
				strings.Join(day.SampleNotes, "; "),
			}
			if err := csvWriter.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func summaryRows(result *schema.ReportResult) []summaryRow {
	rows := make([]summaryRow, 0, len(result.Days))
	for _, day := range result.Days {
		rows = append(rows, summaryRow{
			Date:         day.Date.Format(contract.DateFormat),
			Weekday:      day.Date.Weekday().String(),
			HoursExtra:   day.HoursExtra,
			LunchPenalty: day.LunchPenalty,
			Examples:     day.SampleNotes,
		})
	}
	return rows
}

func summaryParquetRows(result *schema.ReportResult) []parquet.DaySummary {
	rows := make([]parquet.DaySummary, 0, len(result.Days))
	for _, day := range result.Days {
		rows = append(rows, parquet.DaySummary{
			Date:           day.Date.Format(contract.DateFormat),
			Weekday:        day.Date.Weekday().String(),
			OutsideMinutes: int32(day.OutsideMinutes),
			HoursExtra:     day.HoursExtra,
			LunchPenalty:   day.LunchPenalty,
			Examples:       strings.Join(day.SampleNotes, "; "),
		})
	}
	return rows
}

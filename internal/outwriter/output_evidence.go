package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/rageagainstthemanchine/Overtime-Orchestrator/internal/contract"
	"github.com/rageagainstthemanchine/Overtime-Orchestrator/internal/parquet"
	"github.com/rageagainstthemanchine/Overtime-Orchestrator/schema"
)

// evidenceRow is the JSON render model for one evidence record.
type evidenceRow struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Weekday   string `json:"weekday"`
	Source    string `json:"source"`
	Origin    string `json:"origin"`
	Detail    string `json:"detail"`
	EventFrom string `json:"event_from,omitempty"`
	EventTo   string `json:"event_to,omitempty"`
}

// PrintEvidence outputs the raw evidence rows, dispatching based on the output format configured.
func PrintEvidence(result *schema.ReportResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, evidenceRows(result))
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeEvidenceCSV(w, result)
		}, "Wrote CSV")
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return fmt.Errorf("parquet output requires --output-file")
		}
		if err := parquet.WriteEvidenceParquet(evidenceParquetRows(result), cfg.OutputFile); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
		return nil
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeEvidenceTable(result, cfg, duration, w)
		}, "Wrote table")
	}
}

// writeEvidenceTable generates and writes the human-readable table.
func writeEvidenceTable(result *schema.ReportResult, cfg *contract.Config, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Date", "Time", "Day", "Source", "Origin", "Detail"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignLeft
	})

	maxDetail := getMaxTableDetailWidth(cfg)
	var data [][]string
	for _, r := range result.Rows {
		data = append(data, []string{
			r.Timestamp.Format(contract.DateFormat),
			r.Timestamp.Format("15:04"),
			r.Timestamp.Weekday().String(),
			string(r.Source),
			r.Origin,
			contract.TruncateDetail(r.Label, maxDetail),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Fprintf(writer, "\nEvidence rows: %d | Took %s\n", len(result.Rows), duration.Round(time.Millisecond))
	return nil
}

// writeEvidenceCSV writes the machine-readable evidence rows.
func writeEvidenceCSV(w io.Writer, result *schema.ReportResult) error {
	header := []string{"date", "time", "weekday", "source", "repo_or_channel", "detail"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, r := range result.Rows {
			row := []string{
				r.Timestamp.Format(contract.DateFormat),
				r.Timestamp.Format("15:04"),
				r.Timestamp.Weekday().String(),
				string(r.Source),
				r.Origin,
				r.Label,
			}
			if err := csvWriter.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func evidenceRows(result *schema.ReportResult) []evidenceRow {
	rows := make([]evidenceRow, 0, len(result.Rows))
	for _, r := range result.Rows {
		row := evidenceRow{
			ID:      r.ID,
			Date:    r.Timestamp.Format(contract.DateFormat),
			Time:    r.Timestamp.Format("15:04"),
			Weekday: r.Timestamp.Weekday().String(),
			Source:  string(r.Source),
			Origin:  r.Origin,
			Detail:  r.Label,
		}
		if r.Event != nil {
			row.EventFrom = r.Event.Start.Format(time.RFC3339)
			row.EventTo = r.Event.End.Format(time.RFC3339)
		}
		rows = append(rows, row)
	}
	return rows
}

func evidenceParquetRows(result *schema.ReportResult) []parquet.EvidenceRow {
	rows := make([]parquet.EvidenceRow, 0, len(result.Rows))
	for _, r := range result.Rows {
		row := parquet.EvidenceRow{
			ID:        r.ID,
			Timestamp: r.Timestamp,
			Source:    string(r.Source),
			Origin:    r.Origin,
			Detail:    r.Label,
		}
		if r.Event != nil {
			start, end := r.Event.Start, r.Event.End
			row.EventStart = &start
			row.EventEnd = &end
		}
		rows = append(rows, row)
	}
	return rows
}

package report

import (
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// Workbook sheet names.
const (
	SheetResults    = "Results"
	SheetStatistics = "Statistics"
	SheetFailures   = "Failures"
)

// WriteWorkbook writes the document as an XLSX workbook with one sheet
// each for results, statistics and failures.
func WriteWorkbook(w io.Writer, d *Document) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetResults); err != nil {
		return errors.Wrap(err, "naming results sheet")
	}
	for _, name := range []string{SheetStatistics, SheetFailures} {
		if _, err := f.NewSheet(name); err != nil {
			return errors.Wrapf(err, "adding %s sheet", name)
		}
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "creating header style")
	}

	results := [][]interface{}{{
		"Tool", "ID", "Threads", "Ratio", "Bits/" + d.UnitLabel(),
		"Compress (MB/s)", "Decompress (MB/s)", "Peak Mem (MB)",
	}}
	for _, r := range d.Table.Rows {
		var decompress interface{} = NotAvailable
		if r.HasDecompress {
			decompress = r.DecompressMBps
		}
		results = append(results, []interface{}{
			r.Name, r.Tool, r.Threads, r.Ratio, r.BitsPerUnit, r.CompressMBps, decompress, r.PeakMemoryMB,
		})
	}

	statistics := [][]interface{}{{
		"Tool", "Operation", "Runs", "Mean (MB/s)", "Std Dev", "Min", "Max", "Median",
		"Time (s)", "Time Std Dev", "Min Time (s)", "Max Time (s)", "p50 (s)", "p95 (s)", "Ratio", "Ratio Std Dev",
	}}
	for _, s := range d.Summaries {
		row := []interface{}{
			d.Name(s.Tool), Label(s.Operation), s.Count,
			s.ThroughputMean, s.ThroughputStdev, s.ThroughputMin, s.ThroughputMax, s.ThroughputMedian,
			s.ElapsedMean, s.ElapsedStdev, s.ElapsedMin, s.ElapsedMax, s.ElapsedP50, s.ElapsedP95,
		}
		if s.HasRatio {
			row = append(row, s.RatioMean, s.RatioStdev)
		}
		statistics = append(statistics, row)
	}

	failures := [][]interface{}{{"Tool", "ID", "Threads", "Operation", "Warning", "Error"}}
	for _, fr := range d.Table.Failures {
		failures = append(failures, []interface{}{fr.Name, fr.Tool, fr.Threads, string(fr.Operation), fr.Warning, fr.Error})
	}

	for _, sheet := range []struct {
		name string
		rows [][]interface{}
	}{
		{SheetResults, results},
		{SheetStatistics, statistics},
		{SheetFailures, failures},
	} {
		if err := fillSheet(f, sheet.name, sheet.rows, header); err != nil {
			return err
		}
	}
	return errors.Wrap(f.Write(w), "writing workbook")
}

func fillSheet(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return errors.WithStack(err)
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return errors.Wrapf(err, "writing %s row %d", sheet, i+1)
		}
	}
	return errors.Wrapf(f.SetRowStyle(sheet, 1, 1, headerStyle), "styling %s header", sheet)
}

// Package export writes recording lists as Excel workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/callanalyzer/dashboard/internal/core/domain"
)

const sheetName = "Recordings"

var recordingHeader = []interface{}{
	"ID", "Title", "Agent", "Customer phone", "Duration", "Status", "Sentiment", "Uploaded at",
}

// WriteRecordings writes recs, one row per recording under a header row.
func WriteRecordings(w io.Writer, recs []domain.CallRecording) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(sheetName, "A1", &recordingHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range recs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			r.ID,
			r.Title,
			r.Agent.Name,
			r.CustomerPhone,
			domain.FormatDuration(r.DurationSeconds),
			string(r.Status),
			string(r.Sentiment),
			r.UploadedAt.UTC().Format("2006-01-02 15:04:05"),
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Package export renders the aggregated complaint list into the bulk
// formats the cooperative's office staff consume: CSV for quick imports
// and a formatted Excel workbook for reporting.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/ileco-one/triage-backend/internal/domain"
)

var header = []string{
	"Family", "Record ID", "Job Order", "Customer", "Contact", "Address",
	"Issue Type", "Description", "Priority", "Status", "Source", "Created At",
}

func row(c domain.Complaint) []string {
	return []string{
		string(c.Family),
		strconv.FormatUint(uint64(c.RecordID), 10),
		c.JobOrderID,
		c.Name,
		c.Phone,
		c.Address,
		c.IssueType,
		c.Description,
		c.Priority,
		c.Status,
		c.Source,
		c.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// WriteCSV streams the complaint list as CSV.
func WriteCSV(w io.Writer, complaints []domain.Complaint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, c := range complaints {
		if err := cw.Write(row(c)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteExcel renders the complaint list as an xlsx workbook with a bold
// header row and a frozen top pane.
func WriteExcel(w io.Writer, complaints []domain.Complaint) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Complaints"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	for i, h := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return err
	}

	for r, c := range complaints {
		for col, v := range row(c) {
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	}); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

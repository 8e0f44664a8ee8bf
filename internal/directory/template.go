package directory

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/fmuoria/interview-invite-agent/internal/models"
)

const sheetName = "Candidates"

// WriteTemplate writes a candidates workbook with the required headers and the given
// records. The .xlsx extension is appended when missing. Returns the final path.
func WriteTemplate(outputPath string, records []models.CandidateRecord) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath = outputPath + ".xlsx"
	}
	outputPath = filepath.Clean(outputPath)

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return "", fmt.Errorf("failed to rename sheet: %w", err)
	}

	if err := writeCandidatesSheet(f, records); err != nil {
		return "", fmt.Errorf("failed to create candidates sheet: %w", err)
	}

	// Try to save the file directly
	if err := f.SaveAs(outputPath); err != nil {
		// If direct save fails, try buffer write fallback
		var buf bytes.Buffer
		if writeErr := f.Write(&buf); writeErr != nil {
			return "", fmt.Errorf("failed to save Excel file: direct save failed (%v), buffer write also failed: %w", err, writeErr)
		}

		if fileErr := os.WriteFile(outputPath, buf.Bytes(), 0644); fileErr != nil {
			return "", fmt.Errorf("failed to save Excel file: direct save failed (%v), file write failed: %w", err, fileErr)
		}
	}

	return outputPath, nil
}

// writeCandidatesSheet writes the header row and one row per record
func writeCandidatesSheet(f *excelize.File, records []models.CandidateRecord) error {
	f.SetColWidth(sheetName, "A", "A", 25)
	f.SetColWidth(sheetName, "B", "B", 35)
	f.SetColWidth(sheetName, "C", "C", 25)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	for i, header := range RequiredColumns {
		cellName, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cellName, header); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheetName, "A1", "C1", headerStyle); err != nil {
		return err
	}

	for i, r := range records {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), r.Name)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), r.Email)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), r.Position)
	}

	return f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// SampleRecords are written by the template command so a new user sees the expected shape
func SampleRecords() []models.CandidateRecord {
	return []models.CandidateRecord{
		{Name: "Asha Rao", Email: "asha.rao@example.com", Position: "Software Engineer"},
		{Name: "Rahul Mehta", Email: "rahul.mehta@example.com", Position: "Data Analyst"},
	}
}

package grading

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/campus-go-api/internal/apperror"
)

const templateSheet = "Grades"

// ParseBulkXLSX reads the first worksheet of an XLSX upload with the same
// rules as ParseBulkCSV.
func ParseBulkXLSX(r io.Reader, subjectID uint, known []KnownStudent) ParseResult {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return failed(apperror.ValidationError{Field: "file", Message: fmt.Sprintf("failed to open Excel file: %v", err)})
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return failed(apperror.ValidationError{Field: "file", Message: "Workbook has no sheets"})
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return failed(apperror.ValidationError{Field: "file", Message: fmt.Sprintf("failed to get rows: %v", err)})
	}

	return ParseRows(rows, subjectID, known)
}

// WriteTemplateXLSX writes the grade template as a single-sheet workbook.
func WriteTemplateXLSX(w io.Writer, rows []TemplateRow) error {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", templateSheet); err != nil {
		return err
	}

	header := make([]interface{}, len(Header))
	for i, name := range Header {
		header[i] = name
	}
	if err := file.SetSheetRow(templateSheet, "A1", &header); err != nil {
		return err
	}

	for i, row := range rows {
		cells := row.Cells()
		values := make([]interface{}, len(cells))
		for j, cell := range cells {
			values[j] = cell
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := file.SetSheetRow(templateSheet, cell, &values); err != nil {
			return err
		}
	}

	_, err := file.WriteTo(w)
	return err
}

// internal/app/system/spreadsheet/writer.go
package spreadsheet

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// maxSheetName is Excel's sheet name limit.
const maxSheetName = 31

var errNoSheet = errors.New("spreadsheet: no active sheet")

// Writer builds a workbook row by row.
type Writer struct {
	file  *excelize.File
	sheet string
	row   int
}

// NewWriter creates an empty workbook.
func NewWriter() *Writer {
	return &Writer{file: excelize.NewFile()}
}

// AddSheet starts a new sheet. The first call renames the default sheet.
func (w *Writer) AddSheet(name string) error {
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	if w.sheet == "" {
		if err := w.file.SetSheetName("Sheet1", name); err != nil {
			return fmt.Errorf("rename sheet: %w", err)
		}
	} else if _, err := w.file.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}
	w.sheet = name
	w.row = 1
	return nil
}

// WriteHeader writes a bold header row.
func (w *Writer) WriteHeader(columns []string) error {
	vals := make([]any, len(columns))
	for i, c := range columns {
		vals[i] = c
	}
	if err := w.writeCells(vals); err != nil {
		return err
	}

	style, err := w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		first, _ := excelize.CoordinatesToCellName(1, w.row)
		last, _ := excelize.CoordinatesToCellName(len(columns), w.row)
		_ = w.file.SetCellStyle(w.sheet, first, last, style)
	}
	w.row++
	return nil
}

// WriteRow writes one data row.
func (w *Writer) WriteRow(vals ...any) error {
	if err := w.writeCells(vals); err != nil {
		return err
	}
	w.row++
	return nil
}

func (w *Writer) writeCells(vals []any) error {
	if w.sheet == "" {
		return errNoSheet
	}
	for i, v := range vals {
		cell, err := excelize.CoordinatesToCellName(i+1, w.row)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(w.sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

// Save writes the workbook to out.
func (w *Writer) Save(out io.Writer) error {
	return w.file.Write(out)
}

// Close releases the workbook.
func (w *Writer) Close() error {
	return w.file.Close()
}

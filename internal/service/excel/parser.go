package excel

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// SheetInfo basic metadata for one worksheet
type SheetInfo struct {
	Name     string `json:"name"`
	RowCount int    `json:"rowCount"`
}

// Parser wraps one uploaded workbook. Every upload gets a fresh file ID; the
// ID doubles as the extraction cache key root, so replacing a workbook can
// never serve stale extraction results.
type Parser struct {
	file     *excelize.File
	fileID   string
	fileName string
}

// NewParser creates a parser with a fresh file ID
func NewParser() *Parser {
	return &Parser{
		fileID: uuid.New().String(),
	}
}

// LoadFile loads an xlsx workbook from a reader
func (p *Parser) LoadFile(reader io.Reader) error {
	file, err := excelize.OpenReader(reader)
	if err != nil {
		return fmt.Errorf("failed to open excel: %w", err)
	}
	p.file = file
	return nil
}

// FileID returns the workbook identity
func (p *Parser) FileID() string {
	return p.fileID
}

// SetFileName records the original upload name
func (p *Parser) SetFileName(name string) {
	p.fileName = name
}

// FileName returns the original upload name
func (p *Parser) FileName() string {
	return p.fileName
}

// Workbook returns the loaded workbook (read-only use)
func (p *Parser) Workbook() *excelize.File {
	return p.file
}

// GetSheets lists the workbook's sheets
func (p *Parser) GetSheets() ([]SheetInfo, error) {
	if p.file == nil {
		return nil, errors.New("no file loaded")
	}

	sheets := p.file.GetSheetList()
	result := make([]SheetInfo, 0, len(sheets))

	for _, name := range sheets {
		rows, err := p.file.GetRows(name)
		if err != nil {
			continue
		}
		result = append(result, SheetInfo{
			Name:     name,
			RowCount: len(rows),
		})
	}

	return result, nil
}

// GetColumns returns the header row of a sheet
func (p *Parser) GetColumns(sheet string) ([]string, error) {
	if p.file == nil {
		return nil, errors.New("no file loaded")
	}

	rows, err := p.file.GetRows(sheet)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, errors.New("empty sheet")
	}

	return rows[0], nil
}

// Close closes the underlying workbook
func (p *Parser) Close() error {
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

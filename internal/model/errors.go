package model

import "fmt"

// MissingColumnError reports a required column absent from a sheet header.
// Fatal to the bundle or hierarchy build that requested it.
type MissingColumnError struct {
	Sheet  string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("sheet %q: missing column %q", e.Sheet, e.Column)
}

// MissingSheetError reports a named sheet absent from a workbook.
type MissingSheetError struct {
	Sheet string
}

func (e *MissingSheetError) Error() string {
	return fmt.Sprintf("missing sheet %q", e.Sheet)
}

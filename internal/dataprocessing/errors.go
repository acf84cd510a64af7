package dataprocessing

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingColumn matches every *MissingColumnError.
	ErrMissingColumn = errors.New("missing required column")
	// ErrColumnKind reports a column used with the wrong value type.
	ErrColumnKind = errors.New("column has the wrong type")
)

// MissingColumnError names the columns a table lacks.
type MissingColumnError struct {
	Columns []string
}

func (e *MissingColumnError) Error() string {
	if len(e.Columns) == 1 {
		return fmt.Sprintf("missing required column: %s", e.Columns[0])
	}
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

// Is makes errors.Is(err, ErrMissingColumn) hold.
func (e *MissingColumnError) Is(target error) bool {
	return target == ErrMissingColumn
}

// MissingColumns returns the absent column names.
func (e *MissingColumnError) MissingColumns() []string {
	return e.Columns
}

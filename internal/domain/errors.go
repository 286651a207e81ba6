package domain

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrEmptyResult is returned when filtering leaves no usable rows.
	ErrEmptyResult = errors.New("no valid data rows")

	// ErrEmptyDataset is returned when a grid has no finite cells, so no color
	// range can be derived.
	ErrEmptyDataset = errors.New("dataset contains no finite values")

	// ErrUnknownColormap is returned for a colormap name with no palette.
	ErrUnknownColormap = errors.New("unknown colormap")
)

// ShapeMismatchError reports a coordinate axis whose length disagrees with the
// grid dimension it labels.
type ShapeMismatchError struct {
	Axis     string
	Expected int
	Actual   int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("shape mismatch on %s axis: expected %d, got %d", e.Axis, e.Expected, e.Actual)
}

// MissingColumnError reports a required column that is absent from a table.
// Available lists the (normalized) columns that were present.
type MissingColumnError struct {
	Column    string
	Available []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("column %q not found. Available: [%s]", e.Column, strings.Join(e.Available, ", "))
}

// CoordinateLookupError reports a coordinate value with no exact match on its
// reconstructed axis.
type CoordinateLookupError struct {
	Axis  string
	Value float64
}

func (e *CoordinateLookupError) Error() string {
	return fmt.Sprintf("%s value %g has no exact match on reconstructed axis", e.Axis, e.Value)
}

// ValueParseError reports a non-null cell that is not a number where a number
// is required. Row is zero-based and excludes the header.
type ValueParseError struct {
	Column string
	Row    int
	Value  string
}

func (e *ValueParseError) Error() string {
	return fmt.Sprintf("row %d: column %q: %q is not a number", e.Row, e.Column, e.Value)
}

// InputNotFoundError reports that a named input file does not exist.
type InputNotFoundError struct {
	Path string
}

func (e *InputNotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s", filepath.Base(e.Path))
}

// IsInputError reports whether err stems from the caller's input rather than
// from I/O or infrastructure, i.e. whether retrying with the same input is
// pointless.
func IsInputError(err error) bool {
	var (
		shape  *ShapeMismatchError
		column *MissingColumnError
		lookup *CoordinateLookupError
		parse  *ValueParseError
		input  *InputNotFoundError
	)
	switch {
	case errors.As(err, &shape), errors.As(err, &column), errors.As(err, &lookup), errors.As(err, &parse), errors.As(err, &input):
		return true
	case errors.Is(err, ErrEmptyResult), errors.Is(err, ErrEmptyDataset), errors.Is(err, ErrUnknownColormap):
		return true
	}
	return false
}

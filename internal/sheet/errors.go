package sheet

import "errors"

var (
	ErrUnreadableFile      = errors.New("file is not a readable xlsx workbook")
	ErrEmptyFile           = errors.New("file contains no data rows")
	ErrNoSelectableColumns = errors.New("no non-temporal columns to group by")
	ErrInvalidGroupColumn  = errors.New("invalid group column")
	ErrSerialization       = errors.New("serialization failed")
	ErrNotNumeric          = errors.New("column is not numeric")
	ErrColumnNotFound      = errors.New("column not found")
)

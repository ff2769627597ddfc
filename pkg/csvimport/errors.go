package csvimport

import "errors"

var (
	ErrDecodeFailed    = errors.New("csvimport: failed to decode upload")
	ErrInvalidWorkbook = errors.New("csvimport: invalid workbook")
	ErrEmptyWorkbook   = errors.New("csvimport: workbook has no sheets")
)

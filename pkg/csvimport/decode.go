package csvimport

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DecodeUpload reads r as text. UTF-16 input is recognized by its byte
// order mark; everything else is treated as UTF-8 with an optional BOM,
// which is stripped. Carriage returns are removed so CRLF exports split
// like LF ones.
func DecodeUpload(r io.Reader) (string, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	data, err := io.ReadAll(transform.NewReader(r, decoder))
	if err != nil {
		return "", errors.Join(ErrDecodeFailed, err)
	}
	return strings.ReplaceAll(string(data), "\r", ""), nil
}

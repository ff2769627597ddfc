package csvimport_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/scheduled/pkg/csvimport"
)

func TestParseRows(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    []csvimport.RawRow
	}{
		{
			name:    "quoted field keeps embedded comma",
			content: `a,"b,c",d`,
			want:    []csvimport.RawRow{{"a", "b,c", "d"}},
		},
		{
			name:    "blank lines are skipped",
			content: "name,date\n\n   \nJane,2025-01-15\n",
			want:    []csvimport.RawRow{{"name", "date"}, {"Jane", "2025-01-15"}},
		},
		{
			name:    "cells and lines are trimmed",
			content: "  name , date  \r\n Jane ,  2025-01-15 ",
			want:    []csvimport.RawRow{{"name", "date"}, {"Jane", "2025-01-15"}},
		},
		{
			name:    "empty trailing cell is kept",
			content: "a,b,",
			want:    []csvimport.RawRow{{"a", "b", ""}},
		},
		{
			name:    "unbalanced quote swallows the rest of the line",
			content: `a,"b,c,d`,
			want:    []csvimport.RawRow{{"a", "b,c,d"}},
		},
		{
			name:    "empty input",
			content: "",
			want:    []csvimport.RawRow{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, csvimport.ParseRows(tt.content))
		})
	}
}

func TestParseRows_NeverPanics(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"\n\n\n",
		`"""`,
		"\x00\x01\x02,\xff\xfe",
		`,,,,"`,
		"just some words without commas",
		"\"a\"b\"c,\"d",
	}

	for _, in := range inputs {
		require.NotPanics(t, func() {
			rows := csvimport.ParseRows(in)
			if len(rows) > 0 {
				mapping := csvimport.DetectFieldMappings(rows[0])
				_ = csvimport.ConvertRows(rows[1:], mapping)
			}
		}, "input %q", in)
	}
}

package csvimport_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/scheduled/pkg/csvimport"
)

func TestConvertRows(t *testing.T) {
	t.Parallel()

	mapping := csvimport.Mapping{
		csvimport.FieldClientName:  0,
		csvimport.FieldServiceName: 1,
		csvimport.FieldDate:        2,
		csvimport.FieldTime:        3,
		csvimport.FieldDuration:    4,
		csvimport.FieldPrice:       5,
		csvimport.FieldNotes:       6,
	}

	t.Run("normalizes typed fields", func(t *testing.T) {
		t.Parallel()

		rows := []csvimport.RawRow{
			{"Jane Doe", "Haircut", "01/15/2025", "2:30 PM", "45 min", "$1,250.50", "first visit"},
		}

		got := csvimport.ConvertRows(rows, mapping)
		require.Len(t, got, 1)

		a := got[0]
		assert.Equal(t, "Jane Doe", a.ClientName)
		assert.Equal(t, "Haircut", a.ServiceName)
		assert.Equal(t, "2025-01-15", a.Date)
		assert.Equal(t, "14:30", a.Time)
		require.NotNil(t, a.Duration)
		assert.Equal(t, 45, *a.Duration)
		require.NotNil(t, a.Price)
		assert.InDelta(t, 1250.50, *a.Price, 0.001)
		assert.Equal(t, "first visit", a.Notes)
	})

	t.Run("unparsable duration and price are omitted", func(t *testing.T) {
		t.Parallel()

		rows := []csvimport.RawRow{
			{"Jane", "Massage", "2025-01-15", "10:00", "about an hour", "free"},
		}

		got := csvimport.ConvertRows(rows, mapping)
		require.Len(t, got, 1)
		assert.Nil(t, got[0].Duration)
		assert.Nil(t, got[0].Price)
	})

	t.Run("rows missing client name are dropped", func(t *testing.T) {
		t.Parallel()

		rows := []csvimport.RawRow{
			{"", "Haircut", "2025-01-15", "10:00", "30", "20"},
			{"Bob", "Haircut", "2025-01-15", "11:00"},
		}

		got := csvimport.ConvertRows(rows, mapping)
		require.Len(t, got, 1)
		assert.Equal(t, "Bob", got[0].ClientName)
	})

	t.Run("rows missing date or time are dropped", func(t *testing.T) {
		t.Parallel()

		rows := []csvimport.RawRow{
			{"Ann", "Haircut", "", "10:00"},
			{"Ann", "Haircut", "2025-01-15", "   "},
			{"Ann", "Haircut", "2025-01-15"},
		}

		assert.Empty(t, csvimport.ConvertRows(rows, mapping))
	})

	t.Run("unparsable date is kept raw", func(t *testing.T) {
		t.Parallel()

		rows := []csvimport.RawRow{{"Ann", "Haircut", "next tuesday", "10:00"}}

		got := csvimport.ConvertRows(rows, mapping)
		require.Len(t, got, 1)
		assert.Equal(t, "next tuesday", got[0].Date)
	})

	t.Run("mapping beyond row width is ignored", func(t *testing.T) {
		t.Parallel()

		got := csvimport.ConvertRows([]csvimport.RawRow{{"only one cell"}}, mapping)
		assert.Empty(t, got)
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, csvimport.ConvertRows(nil, mapping))
		assert.Empty(t, csvimport.ConvertRows(nil, nil))
	})
}

func TestAppointment_Valid(t *testing.T) {
	t.Parallel()

	assert.True(t, csvimport.Appointment{ClientName: "a", Date: "2025-01-01", Time: "10:00"}.Valid())
	assert.False(t, csvimport.Appointment{Date: "2025-01-01", Time: "10:00"}.Valid())
	assert.False(t, csvimport.Appointment{ClientName: "a", Time: "10:00"}.Valid())
	assert.False(t, csvimport.Appointment{ClientName: "a", Date: "2025-01-01"}.Valid())
}

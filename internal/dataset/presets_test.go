package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-dashboard/internal/models"
)

func day(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func TestQuickRanges(t *testing.T) {
	rng := models.DateRange{
		MinDate: *localDate(2020, time.January, 1),
		MaxDate: *localDate(2021, time.February, 22),
	}

	tests := []struct {
		label string
		group string
		desc  string
		from  string
		to    string
	}{
		{"All Time", PresetGroupPrimary, "Jan 2020 - Feb 2021", "", ""},
		{"2020", PresetGroupPrimary, "Full year 2020", "2020-01-01", "2020-12-31"},
		{"2021", PresetGroupPrimary, "Jan - Feb 2021", "2021-01-01", "2021-02-22"},
		{"Q1 2020", PresetGroupQuarters, "Jan - Mar 2020", "2020-01-01", "2020-03-31"},
		{"Q2 2020", PresetGroupQuarters, "Apr - Jun 2020", "2020-04-01", "2020-06-30"},
		{"Q3 2020", PresetGroupQuarters, "Jul - Sep 2020", "2020-07-01", "2020-09-30"},
		{"Q4 2020", PresetGroupQuarters, "Oct - Dec 2020", "2020-10-01", "2020-12-31"},
		{"Last 6 Months", PresetGroupPeriods, "Aug 2020 - Feb 2021", "2020-08-22", "2021-02-22"},
		{"Last 3 Months", PresetGroupPeriods, "Nov 2020 - Feb 2021", "2020-11-22", "2021-02-22"},
	}

	presets := QuickRanges(rng)
	require.Len(t, presets, len(tests))

	for i, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			p := presets[i]
			assert.Equal(t, tt.label, p.Label)
			assert.Equal(t, tt.group, p.Group)
			assert.Equal(t, tt.desc, p.Description)
			assert.Equal(t, tt.from, day(p.From))
			assert.Equal(t, tt.to, day(p.To))
		})
	}
}

func TestQuickRangesMonthEnd(t *testing.T) {
	tests := []struct {
		name      string
		last      *time.Time
		sixBack   string
		threeBack string
	}{
		// an overflowing day rolls into the following month
		{"leap year", localDate(2020, time.August, 31), "2020-03-02", "2020-05-31"},
		{"three months into february", localDate(2021, time.May, 31), "2020-12-01", "2021-03-03"},
		{"mid month", localDate(2021, time.February, 22), "2020-08-22", "2020-11-22"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			presets := QuickRanges(models.DateRange{MinDate: *localDate(2020, time.January, 1), MaxDate: *tt.last})
			six, three := presets[len(presets)-2], presets[len(presets)-1]

			assert.Equal(t, "Last 6 Months", six.Label)
			assert.Equal(t, tt.sixBack, day(six.From))
			assert.Equal(t, "Last 3 Months", three.Label)
			assert.Equal(t, tt.threeBack, day(three.From))
			assert.Equal(t, day(tt.last), day(three.To))
		})
	}
}

func TestQuickRangesSkipsQuartersAfterLastDay(t *testing.T) {
	presets := QuickRanges(models.DateRange{
		MinDate: *localDate(2020, time.January, 10),
		MaxDate: *localDate(2020, time.May, 15),
	})

	var quarters []models.DateRangePreset
	for _, p := range presets {
		if p.Group == PresetGroupQuarters {
			quarters = append(quarters, p)
		}
	}
	require.Len(t, quarters, 2)
	assert.Equal(t, "2020-03-31", day(quarters[0].To))
	assert.Equal(t, "2020-05-15", day(quarters[1].To))
	assert.Equal(t, "Apr - May 2020", quarters[1].Description)
}

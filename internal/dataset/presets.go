package dataset

import (
	"fmt"
	"time"

	"sales-dashboard/internal/models"
)

const (
	PresetGroupPrimary  = "primary"
	PresetGroupQuarters = "quarters"
	PresetGroupPeriods  = "periods"
)

// QuickRanges builds the quick date filters for a dataset spanning rng: all
// time, each calendar year, the quarters of the first year, and the last 6
// and 3 months counted back from the final invoice day. Windows are clipped
// to the final day. Month arithmetic follows time.AddDate, so counting back
// from the 31st can land in the following month (Aug 31 minus 6 months is
// Mar 2 in a leap year).
func QuickRanges(rng models.DateRange) []models.DateRangePreset {
	first := StartOfDay(rng.MinDate.In(time.Local))
	last := StartOfDay(rng.MaxDate.In(time.Local))

	presets := []models.DateRangePreset{{
		Label:       "All Time",
		Description: monthSpan(first, last),
		Group:       PresetGroupPrimary,
	}}

	for year := first.Year(); year <= last.Year(); year++ {
		from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.Local)
		to := time.Date(year, time.December, 31, 0, 0, 0, 0, time.Local)
		desc := fmt.Sprintf("Full year %d", year)
		if to.After(last) {
			to = last
			desc = monthSpan(from, to)
		}
		presets = append(presets, preset(fmt.Sprint(year), desc, PresetGroupPrimary, from, to))
	}

	year := first.Year()
	for q := 1; q <= 4; q++ {
		from := time.Date(year, time.Month(3*q-2), 1, 0, 0, 0, 0, time.Local)
		if from.After(last) {
			break
		}
		to := time.Date(year, time.Month(3*q+1), 0, 0, 0, 0, 0, time.Local)
		if to.After(last) {
			to = last
		}
		presets = append(presets, preset(fmt.Sprintf("Q%d %d", q, year), monthSpan(from, to), PresetGroupQuarters, from, to))
	}

	for _, months := range []int{6, 3} {
		from := last.AddDate(0, -months, 0)
		presets = append(presets, preset(fmt.Sprintf("Last %d Months", months), monthSpan(from, last), PresetGroupPeriods, from, last))
	}

	return presets
}

func preset(label, desc, group string, from, to time.Time) models.DateRangePreset {
	return models.DateRangePreset{
		Label:       label,
		Description: desc,
		Group:       group,
		From:        &from,
		To:          &to,
	}
}

// monthSpan describes a window as "Jan - Mar 2020" or "Aug 2020 - Feb 2021".
func monthSpan(from, to time.Time) string {
	if from.Year() == to.Year() {
		if from.Month() == to.Month() {
			return from.Format("Jan 2006")
		}
		return from.Format("Jan") + " - " + to.Format("Jan 2006")
	}
	return from.Format("Jan 2006") + " - " + to.Format("Jan 2006")
}

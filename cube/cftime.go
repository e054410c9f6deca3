package cube

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ErrNotTimeAxis is returned when the units of an axis
// are not in the CF `<unit> since <reference>` form.
var ErrNotTimeAxis = errors.New("not a CF time axis")

var referenceLayouts = []string{
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-1-2 15:4:5",
	"2006-1-2 15:4",
	"2006-01-02",
	"2006-1-2",
}

type timeUnits struct {
	step      time.Duration
	reference time.Time
}

func parseTimeUnits(units string) (timeUnits, error) {
	parts := strings.SplitN(strings.TrimSpace(units), " since ", 2)
	if len(parts) != 2 {
		return timeUnits{}, fmt.Errorf("%w: units `%s`", ErrNotTimeAxis, units)
	}

	var res timeUnits
	switch strings.ToLower(strings.TrimSpace(parts[0])) {
	case "seconds", "second", "secs", "sec", "s":
		res.step = time.Second
	case "minutes", "minute", "mins", "min":
		res.step = time.Minute
	case "hours", "hour", "hrs", "hr", "h":
		res.step = time.Hour
	case "days", "day", "d":
		res.step = 24 * time.Hour
	default:
		return timeUnits{}, fmt.Errorf("%w: unknown time unit `%s`", ErrNotTimeAxis, parts[0])
	}

	ref := strings.TrimSpace(parts[1])
	ref = strings.TrimSuffix(ref, " UTC")
	ref = strings.TrimSuffix(ref, " utc")
	for _, layout := range referenceLayouts {
		t, err := time.ParseInLocation(layout, ref, time.UTC)
		if err == nil {
			res.reference = t.UTC()
			return res, nil
		}
	}
	return timeUnits{}, fmt.Errorf("%w: cannot parse reference date `%s`", ErrNotTimeAxis, ref)
}

// maxDays bounds the offsets at converts, far beyond any
// calendar date found in meteorological data.
const maxDays = 1e8

// at converts an offset expressed in units to an instant. Whole
// days and the remainder are added separately, offsets spanning
// more than a time.Duration (about 292 years) are common with
// references like 0001-01-01. NaN, infinite and out of range
// offsets convert to the zero time.
func (u timeUnits) at(offset float64) time.Time {
	if math.IsNaN(offset) || math.IsInf(offset, 0) {
		return time.Time{}
	}
	perDay := float64(24 * time.Hour / u.step)
	days := math.Trunc(offset / perDay)
	if math.Abs(days) > maxDays {
		return time.Time{}
	}
	rest := offset - days*perDay
	return u.reference.
		AddDate(0, 0, int(days)).
		Add(time.Duration(math.Round(rest * float64(u.step))))
}

package parse

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrNoTemporalSignal means the message carries no recognizable date or
	// time, so the scheduling flow keeps asking for one.
	ErrNoTemporalSignal = errors.New("no temporal signal in message")

	// ErrOutsideAvailability means a date or time was understood but falls
	// outside visiting hours (Monday to Saturday, 9:00 to 18:00).
	ErrOutsideAvailability = errors.New("requested time outside availability window")
)

const (
	openingHour = 9
	closingHour = 18
	defaultHour = 10
)

var weekdays = map[string]time.Weekday{
	"lunes":     time.Monday,
	"martes":    time.Tuesday,
	"miércoles": time.Wednesday,
	"miercoles": time.Wednesday,
	"jueves":    time.Thursday,
	"viernes":   time.Friday,
	"sábado":    time.Saturday,
	"sabado":    time.Saturday,
	"domingo":   time.Sunday,
}

var (
	clockRe           = regexp.MustCompile(`(\d{1,2})(?::([0-5]\d))?\s*(am|pm|hrs?|h)\b`)
	aLasRe            = regexp.MustCompile(`a\s+las?\s+(\d{1,2})(?::([0-5]\d))?`)
	tomorrowContextRe = regexp.MustCompile(`(?:por|en|de)\s+la\s+mañana`)
)

// HasTemporalSignal reports whether the message names any date or time the
// scheduling flow could consume, valid or not.
func HasTemporalSignal(text string) bool {
	_, err := VisitTime(text, time.Now())
	return !errors.Is(err, ErrNoTemporalSignal)
}

// VisitTime resolves a Spanish scheduling phrase to a concrete local time.
// Dates are resolved to the next future occurrence relative to now. A
// message with a time but no date lands on the next day inside the window.
func VisitTime(text string, now time.Time) (time.Time, error) {
	lower := strings.ToLower(text)

	day, dayFound, err := parseDay(lower, now)
	if err != nil {
		return time.Time{}, err
	}

	hour, minute, hourFound := parseHour(lower)

	if !dayFound && !hourFound {
		return time.Time{}, ErrNoTemporalSignal
	}
	if !dayFound {
		// Time only: assume tomorrow.
		day = now.AddDate(0, 0, 1)
	}
	if !hourFound {
		hour, minute = defaultHour, 0
	}

	resolved := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, now.Location())

	if resolved.Weekday() == time.Sunday {
		return time.Time{}, ErrOutsideAvailability
	}
	if hour < openingHour || hour > closingHour || (hour == closingHour && minute > 0) {
		return time.Time{}, ErrOutsideAvailability
	}
	return resolved, nil
}

func parseDay(lower string, now time.Time) (time.Time, bool, error) {
	if strings.Contains(lower, "pasado mañana") || strings.Contains(lower, "pasado manana") {
		return now.AddDate(0, 0, 2), true, nil
	}
	// "mañana" as a date, not "por la mañana" as a daypart.
	if strings.Contains(lower, "mañana") && !tomorrowContextRe.MatchString(lower) {
		return now.AddDate(0, 0, 1), true, nil
	}
	if strings.Contains(lower, "hoy") {
		return now, true, nil
	}

	for name, wd := range weekdays {
		if !strings.Contains(lower, name) {
			continue
		}
		if wd == time.Sunday {
			return time.Time{}, false, ErrOutsideAvailability
		}
		days := (int(wd) - int(now.Weekday()) + 7) % 7
		if days == 0 {
			days = 7
		}
		return now.AddDate(0, 0, days), true, nil
	}
	return time.Time{}, false, nil
}

func parseHour(lower string) (hour, minute int, found bool) {
	if m := clockRe.FindStringSubmatch(lower); m != nil {
		hour, _ = strconv.Atoi(m[1])
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if m[3] == "pm" && hour < 12 {
			hour += 12
		}
		return hour, minute, true
	}
	if m := aLasRe.FindStringSubmatch(lower); m != nil {
		hour, _ = strconv.Atoi(m[1])
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		// Small hours said without a meridiem mean the afternoon.
		if hour >= 1 && hour <= 7 {
			hour += 12
		}
		return hour, minute, true
	}
	if strings.Contains(lower, "tarde") {
		return 15, 0, true
	}
	if strings.Contains(lower, "noche") {
		return 18, 0, true
	}
	return 0, 0, false
}

package bulkimport

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var errInvalidDate = errors.New("invalid date")

var (
	isoPrefix  = regexp.MustCompile(`^\d{4}`)
	dmyPattern = regexp.MustCompile(`^(\d{1,2})[-/.](\d{1,2})[-/.](\d{4})(?:[ T]+(\d{1,2}):(\d{1,2})(?::(\d{1,2}))?)?$`)
)

var zonedLayouts = []string{
	time.RFC3339Nano,
}

var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006/01/02",
}

// parseExamTime accepts ISO-prefixed values as-is and D-M-YYYY[ H:M[:S]]
// values where the component greater than 12 is the day; when neither
// exceeds 12 the first one is the month.
func parseExamTime(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errInvalidDate
	}
	if loc == nil {
		loc = time.Local
	}

	if isoPrefix.MatchString(value) {
		for _, layout := range zonedLayouts {
			if t, err := time.Parse(layout, value); err == nil {
				return t, nil
			}
		}
		for _, layout := range localLayouts {
			if t, err := time.ParseInLocation(layout, value, loc); err == nil {
				return t, nil
			}
		}
		return time.Time{}, errInvalidDate
	}

	match := dmyPattern.FindStringSubmatch(value)
	if match == nil {
		return time.Time{}, errInvalidDate
	}

	part1 := atoiOrZero(match[1])
	part2 := atoiOrZero(match[2])
	year := atoiOrZero(match[3])
	hour := atoiOrZero(match[4])
	minute := atoiOrZero(match[5])
	second := atoiOrZero(match[6])

	day, month := part2, part1
	if part1 > 12 {
		day, month = part1, part2
	}

	if month < 1 || month > 12 || day < 1 || hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, errInvalidDate
	}

	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, loc)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, errInvalidDate
	}
	return t, nil
}

func atoiOrZero(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

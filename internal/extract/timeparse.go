package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// TimeStrategy attempts to parse a raw timestamp string into epoch
// milliseconds. Strategies are independent heuristics tried in order;
// adding a new export-format heuristic means appending to the list.
type TimeStrategy func(s string) (int64, bool)

// timeStrategies is the ordered parser chain. The generic layout list runs
// first so new layouts extend it without touching the producer regex.
var timeStrategies = []TimeStrategy{
	parseGenericTime,
	parseProducerTime,
}

// ParseTimestamp runs every strategy in order and returns the first hit,
// or nil when none of them recognizes the string.
func ParseTimestamp(s string) *int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, strategy := range timeStrategies {
		if ms, ok := strategy(s); ok {
			return &ms
		}
	}
	return nil
}

// genericLayouts are tried in order by parseGenericTime. Layouts without a
// zone are interpreted in local time, matching how exports render clocks.
var genericLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02 Jan 2006 15:04",
}

func parseGenericTime(s string) (int64, bool) {
	for _, layout := range genericLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t.UnixMilli(), true
		}
	}
	return 0, false
}

// producerTimeRe matches the common producer format
// "<Month> <Day>, <Year> <Hour>:<Minute> <am|pm>", e.g. "Mar 16, 2023 11:23 pm".
// Month names and am/pm are case-insensitive; full names and abbreviations
// both resolve through the month table below.
var producerTimeRe = regexp.MustCompile(`(?i)^([a-z]+)\.?\s+(\d{1,2}),\s*(\d{4})\s+(\d{1,2}):(\d{2})\s*(am|pm)$`)

// monthsByPrefix maps lowercase three-letter month prefixes to months.
var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

func parseProducerTime(s string) (int64, bool) {
	m := producerTimeRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}

	name := strings.ToLower(m[1])
	if len(name) < 3 {
		return 0, false
	}
	month, ok := monthsByPrefix[name[:3]]
	if !ok {
		return 0, false
	}

	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	hour, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])
	if day < 1 || day > 31 || hour < 1 || hour > 12 || minute > 59 {
		return 0, false
	}

	// 12-hour clock: 12am is midnight, 12pm is noon.
	if hour == 12 {
		hour = 0
	}
	if strings.EqualFold(m[6], "pm") {
		hour += 12
	}

	t := time.Date(year, month, day, hour, minute, 0, 0, time.Local)
	return t.UnixMilli(), true
}

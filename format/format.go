// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package format

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Sentinel strings returned for missing values
const (
	NotAvailable     = "N/A"
	SelectDateRange  = "Select Date Range"
	ZeroBytes        = "0 Bytes"
	Ellipsis         = "..."
	DefaultMaxLength = 180
)

// dateLayouts are tried in order when parsing a date string
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"01/02/2006",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
}

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// Bill identifies a piece of legislation by state and optional bill number
type Bill struct {
	State      string `json:"state"`
	BillNumber string `json:"bill_number,omitempty"`
}

// FormatDate renders a date string as MM/DD/YYYY.
// Empty input returns "N/A"; input that does not parse is returned unchanged.
func FormatDate(s string) string {
	if s == "" {
		return NotAvailable
	}
	t, ok := parseDate(s)
	if !ok {
		return s
	}
	return t.Format("01/02/2006")
}

// FormatDatePtr is FormatDate for nullable columns. nil and "" are the same.
func FormatDatePtr(p *string) string {
	if p == nil {
		return NotAvailable
	}
	return FormatDate(*p)
}

// FormatTime formats a nullable timestamp the same way as FormatDate
func FormatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return NotAvailable
	}
	return t.Format("01/02/2006")
}

// FormatDateRange renders "start - end", or a prompt when either end is missing
func FormatDateRange(start, end string) string {
	if start == "" || end == "" {
		return SelectDateRange
	}
	return FormatDate(start) + " - " + FormatDate(end)
}

// FormatBillID joins state and bill number, e.g. "CA AB-5"
func FormatBillID(b Bill) string {
	return strings.TrimSpace(b.State + " " + b.BillNumber)
}

// FormatRole turns "policy_analyst" into "Policy Analyst".
// Only the first rune of each token changes.
func FormatRole(role string) string {
	tokens := strings.Split(role, "_")
	for i, tok := range tokens {
		if tok == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(tok)
		tokens[i] = string(unicode.ToUpper(r)) + tok[size:]
	}
	return strings.Join(tokens, " ")
}

// TruncateText cuts text to maxLength runes and appends "..." when it was longer
func TruncateText(text string, maxLength int) string {
	if maxLength < 0 {
		maxLength = 0
	}
	if utf8.RuneCountInString(text) <= maxLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxLength]) + Ellipsis
}

// Truncate is TruncateText with the default length of 180
func Truncate(text string) string {
	return TruncateText(text, DefaultMaxLength)
}

// FormatFileSize renders a byte count using 1024-based units up to GB
func FormatFileSize(bytes int64) string {
	if bytes == 0 {
		return ZeroBytes
	}
	if bytes < 0 {
		return "-" + FormatFileSize(-bytes)
	}

	// floor(log1024(bytes)), computed on integers so exact powers of 1024
	// land on their own unit
	i := 0
	for n := bytes; n >= 1024 && i < len(sizeUnits)-1; n /= 1024 {
		i++
	}

	// Round to two places first, then print the shortest form of that value
	// so that 1.50 becomes 1.5 and 1.00 becomes 1.
	fixed := strconv.FormatFloat(float64(bytes)/math.Pow(1024, float64(i)), 'f', 2, 64)
	v, err := strconv.ParseFloat(fixed, 64)
	if err != nil {
		return fixed + " " + sizeUnits[i]
	}
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + sizeUnits[i]
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

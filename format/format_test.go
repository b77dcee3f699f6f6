// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package format

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", "N/A"},
		{"unparseable", "not-a-date", "not-a-date"},
		{"iso date", "2024-03-05", "03/05/2024"},
		{"rfc3339 keeps written date", "2024-12-31T23:30:00-08:00", "12/31/2024"},
		{"rfc3339 nano", "2024-01-09T08:00:00.123456Z", "01/09/2024"},
		{"datetime without zone", "2023-07-04 09:15:00", "07/04/2023"},
		{"us ordering passes through", "03/05/2024", "03/05/2024"},
		{"long month", "March 5, 2024", "03/05/2024"},
		{"invalid day", "2024-02-30", "2024-02-30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDate(tt.input))
		})
	}
}

func TestFormatDatePtr(t *testing.T) {
	empty := ""
	date := "2024-03-05"

	assert.Equal(t, "N/A", FormatDatePtr(nil))
	assert.Equal(t, "N/A", FormatDatePtr(&empty))
	assert.Equal(t, "03/05/2024", FormatDatePtr(&date))
}

func TestFormatTime(t *testing.T) {
	ts := time.Date(2025, time.November, 2, 15, 0, 0, 0, time.UTC)

	assert.Equal(t, "N/A", FormatTime(nil))
	assert.Equal(t, "N/A", FormatTime(&time.Time{}))
	assert.Equal(t, "11/02/2025", FormatTime(&ts))
}

func TestFormatDateRange(t *testing.T) {
	assert.Equal(t, "Select Date Range", FormatDateRange("", "2024-01-01"))
	assert.Equal(t, "Select Date Range", FormatDateRange("2024-01-01", ""))
	assert.Equal(t, "01/01/2024 - 06/30/2024", FormatDateRange("2024-01-01", "2024-06-30"))
	assert.Equal(t, "someday - 06/30/2024", FormatDateRange("someday", "2024-06-30"))
}

func TestFormatBillID(t *testing.T) {
	assert.Equal(t, "CA AB-5", FormatBillID(Bill{State: "CA", BillNumber: "AB-5"}))
	assert.Equal(t, "CA", FormatBillID(Bill{State: "CA"}))
	assert.Equal(t, "", FormatBillID(Bill{}))
	assert.Equal(t, "NY S-1", FormatBillID(Bill{State: " NY", BillNumber: "S-1 "}))
}

func TestFormatRole(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"policy_analyst", "Policy Analyst"},
		{"", ""},
		{"a", "A"},
		{"admin", "Admin"},
		{"senior_POLICY_analyst", "Senior POLICY Analyst"},
		{"reviewer_mIxEd", "Reviewer MIxEd"},
		{"double__underscore", "Double  Underscore"},
		{"_leading", " Leading"},
		{"élan_vital", "Élan Vital"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatRole(tt.input))
		})
	}
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "hello", TruncateText("hello", 10))
	assert.Equal(t, "hello", TruncateText("hello", 5))
	assert.Equal(t, "hello...", TruncateText("hello world", 5))
	assert.Equal(t, "...", TruncateText("hello", 0))
	assert.Equal(t, "...", TruncateText("hello", -3))
	assert.Equal(t, "", TruncateText("", 0))
	assert.Equal(t, "héll...", TruncateText("héllo wörld", 4))
}

func TestTruncate_DefaultLength(t *testing.T) {
	short := strings.Repeat("x", DefaultMaxLength)
	long := strings.Repeat("y", DefaultMaxLength+1)

	assert.Equal(t, short, Truncate(short))
	assert.Equal(t, strings.Repeat("y", DefaultMaxLength)+"...", Truncate(long))
}

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 Bytes"},
		{1, "1 Bytes"},
		{1023, "1023 Bytes"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{1100, "1.07 KB"},
		{1024 * 1024, "1 MB"},
		{5 * 1024 * 1024 / 2, "2.5 MB"},
		{1024 * 1024 * 1024, "1 GB"},
		{1024 * 1024 * 1024 * 1024, "1024 GB"},
		{-1536, "-1.5 KB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFileSize(tt.bytes))
		})
	}
}

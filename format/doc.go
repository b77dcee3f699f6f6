// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package format converts stored values into display strings.

Every function is total: missing or malformed input yields a fixed
fallback rather than an error.

# Dates

	format.FormatDate("2024-03-05")            // "03/05/2024"
	format.FormatDate("")                      // "N/A"
	format.FormatDate("not-a-date")            // "not-a-date"
	format.FormatDateRange("", "2024-01-01")   // "Select Date Range"

# Identifiers and Roles

	format.FormatBillID(format.Bill{State: "CA", BillNumber: "AB-5"}) // "CA AB-5"
	format.FormatRole("policy_analyst")                               // "Policy Analyst"

# Text and Sizes

	format.TruncateText("hello world", 5) // "hello..."
	format.FormatFileSize(1536)           // "1.5 KB"

Sizes use 1024-based units and stop at GB.
*/
package format

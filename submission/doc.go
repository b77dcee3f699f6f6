// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package submission decides whether a scorecard can be submitted.

# Readiness

Evaluate returns the gate and the ordered list of blocking reasons:

	r := submission.Evaluate(input)
	if !r.CanSubmit {
		// r.Issues explains why
	}

# Display

Banner is nil whenever CanSubmit is true, even if Issues is non-empty.
When blocked, it carries BannerHeader and the issues exactly as given.

# Dispatch

The submit action only runs when allowed:

	submitted, err := r.Dispatch(func() error {
		return markSubmitted(tx, id)
	})

A blocked Dispatch returns (false, nil) without calling the function.
*/
package submission

// Copyright (c) 2026 Meridia Health. All rights reserved.

/*
Package strset complements the standard [slices] package with set-like
operations on string slices that preserve first-seen order.

Category tag lists in the preference document are sets for membership purposes
but keep their insertion order for display, so plain map-based sets are not
usable here.
*/
package strset

// Dedupe returns the input with duplicate entries removed, keeping the first
// occurrence of each value in its original position.
func Dedupe(input []string) []string {
	if input == nil {
		return nil
	}

	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))
	for _, v := range input {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}

// Contains reports whether the slice holds the given value.
func Contains(input []string, value string) bool {
	for _, v := range input {
		if v == value {
			return true
		}
	}
	return false
}

// Remove returns the input without any occurrence of the given value,
// preserving the order of the remaining entries.
func Remove(input []string, value string) []string {
	if input == nil {
		return nil
	}

	// Not pre-allocating to full length to avoid excessive memory on heavy filters
	var result []string
	for _, v := range input {
		if v != value {
			result = append(result, v)
		}
	}

	return result
}

package pdk

import (
	"regexp"
	"strings"
)

var (
	// Comma with any surrounding whitespace
	reCommaList = regexp.MustCompile(`\s*,\s*`)
)

/*
 * Split a comma separated configuration value.
 *
 * Returns nil when there is nothing but whitespace.
 * Empty elements are kept, so "a,b," gives "a", "b" and ""
 */
func SplitCommaList(value string) []string {
	if value == "" {
		return nil
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	return reCommaList.Split(value, -1)
}

/*
 * Check whether the slice contains the given string
 */
func StringSliceContains(slice []string, val string) bool {
	for _, item := range slice {
		if item == val {
			return true
		}
	}

	return false
}

package cryptox

import "strings"

// MaskIDNumber obscures the middle of an ID number for display, keeping the
// first 3 and last 4 characters. Short values are returned unchanged.
func MaskIDNumber(id string) string {
	if len(id) < 8 {
		return id
	}
	return id[:3] + strings.Repeat("*", len(id)-7) + id[len(id)-4:]
}

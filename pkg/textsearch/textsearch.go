// Package textsearch filters in-memory lists by a free-text term.
package textsearch

import "strings"

// Fields extracts the two searchable fields of a row.
type Fields[T any] func(T) (string, string)

// Matches reports whether term occurs, case-insensitively, in either field.
// The term is used as typed, surrounding spaces included. An empty term
// matches everything.
func Matches(term, first, second string) bool {
	term = strings.ToLower(term)
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(first), term) ||
		strings.Contains(strings.ToLower(second), term)
}

// Filter returns the rows whose fields contain term, preserving order.
// An empty term returns rows unchanged.
func Filter[T any](rows []T, term string, fields Fields[T]) []T {
	if term == "" {
		return rows
	}

	matched := make([]T, 0, len(rows))
	for _, row := range rows {
		first, second := fields(row)
		if Matches(term, first, second) {
			matched = append(matched, row)
		}
	}
	return matched
}

package parser

import (
	"fmt"
	"strings"
)

func countNumeric(tokens []string) (numeric, nonEmpty int) {
	for _, t := range tokens {
		if strings.TrimSpace(t) == "" {
			continue
		}
		nonEmpty++
		if isNumber(t) {
			numeric++
		}
	}
	return numeric, nonEmpty
}

// detectHeader decides whether first is a header row, using second (the next
// data row, possibly nil) for comparison.
func detectHeader(first, second []string) (bool, string) {
	n1, t1 := countNumeric(first)
	n2, t2 := countNumeric(second)
	if n1 < n2 && float64(n2) >= float64(t2)/2 {
		return true, fmt.Sprintf("first row has %d numeric fields vs %d in the next row", n1, n2)
	}
	if t1 >= 2 && n1 == 0 {
		return true, "first row is entirely non-numeric"
	}
	return false, ""
}

func syntheticNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("Column_%d", i+1)
	}
	return names
}

// headerNames turns header tokens into column names. Blank names get their
// positional synthetic name and duplicates get a numeric suffix.
func headerNames(tokens []string) (names []string, renamed int) {
	names = make([]string, len(tokens))
	seen := map[string]int{}
	for i, t := range tokens {
		name := strings.TrimSpace(t)
		if name == "" {
			name = fmt.Sprintf("Column_%d", i+1)
			renamed++
		}
		if n := seen[name]; n > 0 {
			candidate := fmt.Sprintf("%s_%d", name, n+1)
			for seen[candidate] > 0 {
				n++
				candidate = fmt.Sprintf("%s_%d", name, n+1)
			}
			seen[name] = n + 1
			name = candidate
			renamed++
		}
		seen[name]++
		names[i] = name
	}
	return names, renamed
}

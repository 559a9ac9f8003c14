package catalog

import "strings"

// NormalizeCategoryNames trims names, drops blanks and removes duplicates
// while keeping the first occurrence order.
func NormalizeCategoryNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	result := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		result = append(result, n)
	}
	return result
}

// MissingCategoryNames returns the requested names that have no match in found
func MissingCategoryNames(requested []string, found []Category) []string {
	known := make(map[string]struct{}, len(found))
	for _, c := range found {
		known[c.Name] = struct{}{}
	}
	var missing []string
	for _, n := range requested {
		if _, ok := known[n]; !ok {
			missing = append(missing, n)
		}
	}
	return missing
}

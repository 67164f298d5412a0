package customsearch

import "strings"

// BuildQuery combines the base query, the caller's term and one site: filter
// per store, e.g. `Taylor Swift merchandise new arrivals (site:a OR site:b)`.
func BuildQuery(base, term string, stores []string) string {
	parts := make([]string, 0, 3)
	if b := strings.TrimSpace(base); b != "" {
		parts = append(parts, b)
	}
	if t := strings.TrimSpace(term); t != "" {
		parts = append(parts, t)
	}

	if len(stores) > 0 {
		filters := make([]string, len(stores))
		for i, store := range stores {
			filters[i] = "site:" + store
		}
		parts = append(parts, "("+strings.Join(filters, " OR ")+")")
	}

	return strings.Join(parts, " ")
}

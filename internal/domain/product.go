package domain

// Default labels used when a search result carries no usable metadata
const (
	DefaultPrice  = "Check price"
	DefaultSource = "Other Store"
)

// Product is a normalized merchandise listing built from one search result
type Product struct {
	ID          string `json:"id"` // short hash of the title, not globally unique
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
	Price       string `json:"price"` // literal pass-through, never parsed
	ImagePath   string `json:"imagePath"`
	Source      string `json:"source"`
}

// DedupeByTitle keeps one product per title. A later product replaces an
// earlier one with the same title but takes over its position.
func DedupeByTitle(products []Product) []Product {
	index := make(map[string]int, len(products))
	unique := make([]Product, 0, len(products))

	for _, p := range products {
		if i, ok := index[p.Title]; ok {
			unique[i] = p
			continue
		}
		index[p.Title] = len(unique)
		unique = append(unique, p)
	}

	return unique
}

package domain

import "encoding/json"

// SearchResults is the raw Custom Search API response body. Items are kept
// undecoded so one malformed item cannot fail the whole payload.
type SearchResults struct {
	Items []json.RawMessage `json:"items"`
	// HasItems is false when the response carried no "items" key at all
	HasItems bool `json:"-"`
}

// UnmarshalJSON records whether the items key was present
func (r *SearchResults) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	items, ok := raw["items"]
	if !ok {
		r.Items = nil
		r.HasItems = false
		return nil
	}

	r.HasItems = true
	return json.Unmarshal(items, &r.Items)
}

// SearchItem is a single decoded search result
type SearchItem struct {
	Title   string   `json:"title"`
	Snippet string   `json:"snippet"`
	Link    string   `json:"link"`
	PageMap *PageMap `json:"pagemap,omitempty"`
}

// PageMap holds the structured data the search engine extracted from a page
type PageMap struct {
	CSEImage []CSEImage       `json:"cse_image,omitempty"`
	Product  []ProductPageMap `json:"product,omitempty"`
}

// CSEImage is the thumbnail the search engine picked for a page
type CSEImage struct {
	Src string `json:"src"`
}

// ProductPageMap is schema.org product metadata. Price may be a JSON string
// or number, so it stays raw.
type ProductPageMap struct {
	Price json.RawMessage `json:"price,omitempty"`
}

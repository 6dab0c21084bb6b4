// Package page extracts structured content from a rendered page and turns it
// into spoken descriptions.
package page

import "strings"

// Kind names one section of Info.
type Kind string

const (
	Products Kind = "products"
	Videos   Kind = "videos"
	Articles Kind = "articles"
	Music    Kind = "music"
	Images   Kind = "images"
	Links    Kind = "links"
)

// Kinds lists every section in description order.
var Kinds = []Kind{Products, Videos, Articles, Music, Images, Links}

// ParseKind maps a section name to its Kind.
func ParseKind(name string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Kinds {
		if k == known {
			return k, true
		}
	}
	return "", false
}

// Item is a sparse set of named fields. Only non-empty fields are stored.
type Item map[string]string

// Get returns the field value or "".
func (it Item) Get(field string) string {
	return it[field]
}

// newItem builds an Item from field/value pairs, dropping empty values.
// It returns nil when every value is empty.
func newItem(pairs ...string) Item {
	it := Item{}
	for i := 0; i+1 < len(pairs); i += 2 {
		if v := strings.TrimSpace(pairs[i+1]); v != "" {
			it[pairs[i]] = v
		}
	}
	if len(it) == 0 {
		return nil
	}
	return it
}

// Info is the structured content of one page.
type Info struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Products []Item `json:"products,omitempty"`
	Videos   []Item `json:"videos,omitempty"`
	Articles []Item `json:"articles,omitempty"`
	Music    []Item `json:"music,omitempty"`
	Images   []Item `json:"images,omitempty"`
	Links    []Item `json:"links,omitempty"`
}

// Items returns the section for k.
func (i *Info) Items(k Kind) []Item {
	switch k {
	case Products:
		return i.Products
	case Videos:
		return i.Videos
	case Articles:
		return i.Articles
	case Music:
		return i.Music
	case Images:
		return i.Images
	case Links:
		return i.Links
	}
	return nil
}

// Empty reports whether no section holds anything.
func (i *Info) Empty() bool {
	for _, k := range Kinds {
		if len(i.Items(k)) > 0 {
			return false
		}
	}
	return true
}

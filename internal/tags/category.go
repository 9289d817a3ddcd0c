package tags

import "strings"

// Category is a content classification of a dialogue line. Categories live
// in their own namespace and are never checked against the vocal allow-list.
type Category string

const (
	Dialogue        Category = "dialogue"
	GeneralTags     Category = "general_tags"
	SimpleTags      Category = "simple_tags"
	CustomerSupport Category = "customer_support"
	Monologue       Category = "monologue"
)

// Categories lists every category in header order.
var Categories = []Category{Dialogue, GeneralTags, SimpleTags, CustomerSupport, Monologue}

// Facet is the professionalism sub-facet of customer_support lines.
type Facet string

const (
	Casual       Facet = "casual"
	Professional Facet = "professional"
)

// Facets lists every facet in header order.
var Facets = []Facet{Casual, Professional}

// LookupCategory maps a name in any case to a Category.
func LookupCategory(name string) (Category, bool) {
	c := Category(Normalize(name))
	for _, known := range Categories {
		if c == known {
			return c, true
		}
	}
	return "", false
}

func lookupFacet(name string) (Facet, bool) {
	f := Facet(Normalize(name))
	for _, known := range Facets {
		if f == known {
			return f, true
		}
	}
	return "", false
}

// ParseCategory reads a content-category tag such as "dialogue" or the
// composite "customer_support|professional". The facet is empty when the
// tag is not composite.
func ParseCategory(t Tag) (Category, Facet, bool) {
	base, sub, composite := strings.Cut(t.Raw, "|")
	c, ok := LookupCategory(base)
	if !ok {
		return "", "", false
	}
	if !composite {
		return c, "", true
	}
	f, ok := lookupFacet(sub)
	if !ok {
		return "", "", false
	}
	return c, f, true
}

// CategoryTag renders the inline tag for c: "[dialogue]".
func CategoryTag(c Category) string {
	return "[" + string(c) + "]"
}

package models

import "sort"

// Attribute names shared by every resource.
const (
	FieldID        = "id"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
	FieldSlug      = "slug"
)

// Item is a single persisted record for one resource instance. Attribute
// values are whatever the JSON decoder produced: strings, float64, bool,
// nested maps and slices.
type Item map[string]interface{}

// ID returns the item's identifier or an empty string if it has none.
func (i Item) ID() string {
	return i.String(FieldID)
}

// String returns a string attribute, or "" when it is missing or not a string.
func (i Item) String(field string) string {
	s, _ := i[field].(string)
	return s
}

// Has reports whether the attribute is present.
func (i Item) Has(field string) bool {
	_, ok := i[field]
	return ok
}

// Clone returns a shallow copy of the item.
func (i Item) Clone() Item {
	if i == nil {
		return nil
	}
	out := make(Item, len(i))
	for k, v := range i {
		out[k] = v
	}
	return out
}

// Merge returns a copy of the item with fields applied on top.
func (i Item) Merge(fields map[string]interface{}) Item {
	out := i.Clone()
	if out == nil {
		out = make(Item, len(fields))
	}
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// Keys returns the attribute names in sorted order.
func (i Item) Keys() []string {
	keys := make([]string, 0, len(i))
	for k := range i {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package models

import (
	"fmt"
	"strings"
)

// BlobField maps a base64 payload key to the attribute that stores the
// uploaded object's URL.
type BlobField struct {
	DataKey   string // request payload key carrying base64 data, e.g. "image_data"
	URLField  string // item attribute holding the object URL, e.g. "image"
	Namespace string // object key prefix, e.g. "images"
	Label     string // human name used in error messages, e.g. "image"
}

// ResourceSchema is the static descriptor the generic CRUD service is
// parameterized with.
type ResourceSchema struct {
	Name       string   // singular lowercase name, e.g. "post"
	Plural     string   // plural lowercase name, e.g. "posts"
	Fields     []string // scalar fields copied from request payloads
	Required   []string // fields that must be present on create
	Blob       *BlobField
	SlugSource string // field the slug is derived from; empty for none

	// Defaults are set on create and never taken from payloads.
	Defaults map[string]interface{}
}

// HasBlob reports whether the resource carries a blob attachment.
func (s *ResourceSchema) HasBlob() bool {
	return s.Blob != nil
}

// HasSlug reports whether a slug is derived for the resource.
func (s *ResourceSchema) HasSlug() bool {
	return s.SlugSource != ""
}

// DisplayName is the capitalized singular name used in messages.
func (s *ResourceSchema) DisplayName() string {
	if s.Name == "" {
		return ""
	}
	return strings.ToUpper(s.Name[:1]) + s.Name[1:]
}

// IDKey is the response key carrying a newly created id, e.g. "post_id".
func (s *ResourceSchema) IDKey() string {
	return s.Name + "_id"
}

// PathParam is the API Gateway path parameter carrying the id, e.g. "postId".
func (s *ResourceSchema) PathParam() string {
	return s.Name + "Id"
}

// Validate checks the descriptor for internal consistency.
func (s *ResourceSchema) Validate() error {
	if s.Name == "" || s.Plural == "" {
		return fmt.Errorf("schema name and plural are required")
	}

	fields := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if isReserved(f) {
			return fmt.Errorf("schema %s: field %q is reserved", s.Name, f)
		}
		fields[f] = true
	}

	for _, f := range s.Required {
		if !fields[f] {
			return fmt.Errorf("schema %s: required field %q is not declared", s.Name, f)
		}
	}

	if s.SlugSource != "" && !fields[s.SlugSource] {
		return fmt.Errorf("schema %s: slug source %q is not declared", s.Name, s.SlugSource)
	}

	if s.Blob != nil {
		if s.Blob.DataKey == "" || s.Blob.URLField == "" || s.Blob.Namespace == "" {
			return fmt.Errorf("schema %s: blob field is incomplete", s.Name)
		}
		if fields[s.Blob.URLField] || fields[s.Blob.DataKey] {
			return fmt.Errorf("schema %s: blob keys must not be plain fields", s.Name)
		}
	}

	for k := range s.Defaults {
		if fields[k] || isReserved(k) {
			return fmt.Errorf("schema %s: default %q collides with a field", s.Name, k)
		}
	}

	return nil
}

func isReserved(field string) bool {
	switch field {
	case FieldID, FieldCreatedAt, FieldUpdatedAt, FieldSlug:
		return true
	}
	return false
}

// PostSchema describes blog posts.
var PostSchema = &ResourceSchema{
	Name:     "post",
	Plural:   "posts",
	Fields:   []string{"category_id", "title", "description", "content", "author_id"},
	Required: []string{"category_id", "title", "description", "content", "author_id"},
	Blob: &BlobField{
		DataKey:   "image_data",
		URLField:  "image",
		Namespace: "images",
		Label:     "image",
	},
	SlugSource: "title",
	Defaults:   map[string]interface{}{"published": false},
}

// CategorySchema describes post categories.
var CategorySchema = &ResourceSchema{
	Name:       "category",
	Plural:     "categories",
	Fields:     []string{"title"},
	Required:   []string{"title"},
	SlugSource: "title",
}

// ProfileSchema describes author profiles.
var ProfileSchema = &ResourceSchema{
	Name:     "profile",
	Plural:   "profiles",
	Fields:   []string{"username", "full_name"},
	Required: []string{"username", "full_name"},
	Blob: &BlobField{
		DataKey:   "avatar_data",
		URLField:  "avatar_url",
		Namespace: "avatars",
		Label:     "avatar",
	},
}

// Schemas lists every resource served by the API.
func Schemas() []*ResourceSchema {
	return []*ResourceSchema{PostSchema, CategorySchema, ProfileSchema}
}

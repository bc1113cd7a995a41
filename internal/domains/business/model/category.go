package model

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultSchemaType is used for categories missing from the taxonomy.
const DefaultSchemaType = "LocalBusiness"

// Category is one entry of the fixed business taxonomy.
type Category struct {
	Key        string `yaml:"key"`
	Name       string `yaml:"name"`
	Plural     string `yaml:"plural"`
	SchemaType string `yaml:"schema_type"`
}

//go:embed categories.yaml
var categoriesYAML []byte

var categories = mustLoadCategories(categoriesYAML)

func mustLoadCategories(data []byte) map[string]Category {
	var doc struct {
		Categories []Category `yaml:"categories"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		panic(fmt.Sprintf("business: invalid category taxonomy: %v", err))
	}

	out := make(map[string]Category, len(doc.Categories))
	for _, c := range doc.Categories {
		if _, dup := out[c.Key]; dup {
			panic(fmt.Sprintf("business: duplicate category %q", c.Key))
		}
		out[c.Key] = c
	}
	return out
}

// LookupCategory returns the taxonomy entry for key. Unknown keys get a
// synthesized entry with the generic schema type and a title-cased name.
func LookupCategory(key string) Category {
	if c, ok := categories[key]; ok {
		return c
	}
	name := humanize(key)
	if name == "" {
		name = "Local Business"
	}
	return Category{
		Key:        key,
		Name:       name,
		Plural:     name,
		SchemaType: DefaultSchemaType,
	}
}

// SchemaTypeFor maps a category key to its schema.org type.
func SchemaTypeFor(key string) string {
	return LookupCategory(key).SchemaType
}

func humanize(key string) string {
	words := strings.FieldsFunc(key, func(r rune) bool { return r == '-' || r == '_' || r == ' ' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

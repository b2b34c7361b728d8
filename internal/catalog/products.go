package catalog

import (
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Product is one entry of a structured YAML catalog.
type Product struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Price       string            `yaml:"price"`
	Sizes       []string          `yaml:"sizes,omitempty"`
	Attributes  map[string]string `yaml:"attributes,omitempty"`
}

type productFile struct {
	Products []Product `yaml:"products"`
}

// ParseProducts accepts either a top-level list or a {products: [...]} document.
func ParseProducts(data []byte) ([]Product, error) {
	var list []Product
	if err := yaml.Unmarshal(data, &list); err == nil && len(list) > 0 {
		return list, nil
	}

	var f productFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f.Products, nil
}

// RenderProducts writes each product as its own paragraph so the catalog
// splitter keeps one product per chunk.
func RenderProducts(products []Product) string {
	paras := make([]string, 0, len(products))
	for _, p := range products {
		if strings.TrimSpace(p.Name) == "" {
			continue
		}
		var b strings.Builder
		b.WriteString(p.Name)
		if p.Description != "" {
			b.WriteString(": ")
			b.WriteString(strings.TrimSpace(p.Description))
		}
		if p.Price != "" {
			fmt.Fprintf(&b, " Price: %s.", p.Price)
		}
		if len(p.Sizes) > 0 {
			fmt.Fprintf(&b, " Sizes: %s.", strings.Join(p.Sizes, ", "))
		}
		for _, k := range sortedKeys(p.Attributes) {
			fmt.Fprintf(&b, " %s: %s.", k, p.Attributes[k])
		}
		paras = append(paras, b.String())
	}
	return strings.Join(paras, "\n\n")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

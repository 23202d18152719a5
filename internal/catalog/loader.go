package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Load reads the catalog at path, or the embedded default when path is empty.
func Load(path string) (Catalog, error) {
	if path == "" {
		cat, err := Parse(defaultYAML)
		if err != nil {
			return cat, fmt.Errorf("load embedded catalog: %w", err)
		}
		return cat, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, err
	}
	cat, err := Parse(b)
	if err != nil {
		return cat, fmt.Errorf("load catalog %s: %w", path, err)
	}
	cat.Path = path
	return cat, nil
}

func Parse(b []byte) (Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(b, &cat); err != nil {
		return cat, err
	}
	applyDefaults(&cat)
	if err := cat.Validate(); err != nil {
		return cat, err
	}
	return cat, nil
}

func applyDefaults(cat *Catalog) {
	if cat.Currency == "" {
		cat.Currency = "¥"
	}
	if cat.Carousel.GroupSize == 0 {
		cat.Carousel.GroupSize = 1
	}
	if cat.Carousel.ColumnsPerScreen == 0 {
		cat.Carousel.ColumnsPerScreen = 2
	}
	if cat.Carousel.AutoplayMS == 0 {
		cat.Carousel.AutoplayMS = 3000
	}
	if cat.Carousel.ResetDelayMS == 0 {
		cat.Carousel.ResetDelayMS = 200
	}
	for i := range cat.Slides {
		if cat.Slides[i].Title == "" && cat.Slides[i].ProductID != 0 {
			for _, p := range cat.Products {
				if p.ID == cat.Slides[i].ProductID {
					cat.Slides[i].Title = p.Name
					break
				}
			}
		}
	}
}

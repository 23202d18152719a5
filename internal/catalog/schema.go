package catalog

import (
	"fmt"
	"strings"
)

const (
	Kind                   = "catalog"
	SupportedSchemaVersion = 1
)

type Catalog struct {
	Kind          string         `yaml:"kind"`
	SchemaVersion int            `yaml:"schema_version"`
	Name          string         `yaml:"name"`
	Currency      string         `yaml:"currency"`
	Products      []Product      `yaml:"products"`
	Slides        []Slide        `yaml:"slides"`
	Carousel      CarouselSpec   `yaml:"carousel"`
	Extensions    map[string]any `yaml:"extensions"`

	Path string `yaml:"-"`
}

type Product struct {
	ID            int    `yaml:"id"`
	Name          string `yaml:"name"`
	Price         int64  `yaml:"price"`
	Stock         int    `yaml:"stock"`
	DescriptionMD string `yaml:"description_md"`
}

type Slide struct {
	ID        string `yaml:"id"`
	Title     string `yaml:"title"`
	Caption   string `yaml:"caption"`
	ImageURI  string `yaml:"image_uri"`
	ProductID int    `yaml:"product_id"`
}

type CarouselSpec struct {
	GroupSize        int `yaml:"group_size"`
	ColumnsPerScreen int `yaml:"columns_per_screen"`
	AutoplayMS       int `yaml:"autoplay_ms"`
	ResetDelayMS     int `yaml:"reset_delay_ms"`
}

func (c Catalog) Validate() error {
	if c.Kind != Kind {
		return fmt.Errorf("kind must be %q", Kind)
	}
	if c.SchemaVersion != SupportedSchemaVersion {
		return fmt.Errorf("unsupported schema_version %d", c.SchemaVersion)
	}
	if len(c.Products) == 0 {
		return fmt.Errorf("products must not be empty")
	}
	ids := map[int]bool{}
	for i, p := range c.Products {
		if p.ID <= 0 {
			return fmt.Errorf("products[%d]: id must be positive", i)
		}
		if ids[p.ID] {
			return fmt.Errorf("products[%d]: duplicate id %d", i, p.ID)
		}
		ids[p.ID] = true
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("products[%d]: name is required", i)
		}
		if p.Price < 0 {
			return fmt.Errorf("products[%d]: price must not be negative", i)
		}
		if p.Stock < 0 {
			return fmt.Errorf("products[%d]: stock must not be negative", i)
		}
	}
	slideIDs := map[string]bool{}
	for i, s := range c.Slides {
		if strings.TrimSpace(s.ID) == "" {
			return fmt.Errorf("slides[%d]: id is required", i)
		}
		if slideIDs[s.ID] {
			return fmt.Errorf("slides[%d]: duplicate id %q", i, s.ID)
		}
		slideIDs[s.ID] = true
		if s.ProductID != 0 && !ids[s.ProductID] {
			return fmt.Errorf("slides[%d]: unknown product_id %d", i, s.ProductID)
		}
	}
	if c.Carousel.GroupSize < 0 || c.Carousel.ColumnsPerScreen < 0 || c.Carousel.AutoplayMS < 0 || c.Carousel.ResetDelayMS < 0 {
		return fmt.Errorf("carousel settings must not be negative")
	}
	return nil
}

// Product looks up a product by id.
func (c Catalog) Product(id int) (Product, bool) {
	for _, p := range c.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

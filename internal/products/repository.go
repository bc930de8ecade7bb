package product

import (
	_ "embed"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var seedCatalog []byte

type catalogFile struct {
	Products []Product `yaml:"products"`
}

// Repository is an immutable, in-process product catalog.
type Repository struct {
	products []Product
	byID     map[string]int
}

// NewRepository indexes products by id. Duplicate ids are rejected.
func NewRepository(products []Product) (*Repository, error) {
	repo := &Repository{
		products: make([]Product, 0, len(products)),
		byID:     make(map[string]int, len(products)),
	}
	for _, p := range products {
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" {
			return nil, fmt.Errorf("product %q has no id", p.Name)
		}
		if _, dup := repo.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate product id %q", p.ID)
		}
		if p.Price.IsNegative() {
			return nil, fmt.Errorf("product %q has a negative price", p.ID)
		}
		repo.byID[p.ID] = len(repo.products)
		repo.products = append(repo.products, p.Clone())
	}
	return repo, nil
}

// LoadRepository decodes a YAML catalog document.
func LoadRepository(r io.Reader) (*Repository, error) {
	var file catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return NewRepository(file.Products)
}

// SeedRepository returns the catalog embedded in the binary.
func SeedRepository() (*Repository, error) {
	return LoadRepository(strings.NewReader(string(seedCatalog)))
}

// FindByID returns a copy of the product, or false when unknown.
func (r *Repository) FindByID(id string) (Product, bool) {
	idx, ok := r.byID[strings.TrimSpace(id)]
	if !ok {
		return Product{}, false
	}
	return r.products[idx].Clone(), true
}

// All returns copies of every product in seed order.
func (r *Repository) All() []Product {
	out := make([]Product, len(r.products))
	for i, p := range r.products {
		out[i] = p.Clone()
	}
	return out
}

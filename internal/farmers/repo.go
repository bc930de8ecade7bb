package farmers

import (
	_ "embed"
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

//go:embed farmers.yaml
var seedFarmers []byte

// Repository holds the farmer directory in seed order.
type Repository struct {
	farmers []Farmer
	byID    map[string]int
}

// LoadRepository decodes a YAML farmer directory.
func LoadRepository(r io.Reader) (*Repository, error) {
	var file struct {
		Farmers []Farmer `yaml:"farmers"`
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode farmers: %w", err)
	}

	repo := &Repository{byID: make(map[string]int, len(file.Farmers))}
	for _, f := range file.Farmers {
		if f.ID == "" {
			return nil, fmt.Errorf("farmer %q has no id", f.Name)
		}
		if _, dup := repo.byID[f.ID]; dup {
			return nil, fmt.Errorf("duplicate farmer id %q", f.ID)
		}
		repo.byID[f.ID] = len(repo.farmers)
		repo.farmers = append(repo.farmers, f)
	}
	return repo, nil
}

// SeedRepository returns the directory embedded in the binary.
func SeedRepository() (*Repository, error) {
	return LoadRepository(bytes.NewReader(seedFarmers))
}

// FindByID returns the farmer or false.
func (r *Repository) FindByID(id string) (Farmer, bool) {
	idx, ok := r.byID[id]
	if !ok {
		return Farmer{}, false
	}
	return clone(r.farmers[idx]), true
}

// All returns every farmer in seed order.
func (r *Repository) All() []Farmer {
	out := make([]Farmer, len(r.farmers))
	for i, f := range r.farmers {
		out[i] = clone(f)
	}
	return out
}

func clone(f Farmer) Farmer {
	f.Certifications = append([]string{}, f.Certifications...)
	f.Specialties = append([]string{}, f.Specialties...)
	return f
}

package model

import "fmt"

// Species is the closed set of animals an account can represent.
type Species string

const (
	SpeciesDog Species = "DOG"
	SpeciesCat Species = "CAT"
)

// IsValid reports whether s is a known species.
func (s Species) IsValid() bool {
	return s == SpeciesDog || s == SpeciesCat
}

// ParseSpecies converts a raw value into a Species.
func ParseSpecies(raw string) (Species, error) {
	s := Species(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("unknown species: %q", raw)
	}
	return s, nil
}

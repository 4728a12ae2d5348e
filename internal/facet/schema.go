package facet

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownDimension is returned when a dimension name is not part of the schema.
var ErrUnknownDimension = errors.New("unknown dimension")

// ErrInvalidValue is returned when a selected value is not a valid dimension value.
var ErrInvalidValue = errors.New("invalid number: dimension values must be non-negative")

// Dimension describes one filterable numeric column.
type Dimension struct {
	Name    string `yaml:"name" json:"name"`
	Modulus int    `yaml:"modulus" json:"modulus"` // used by sample generation
	Label   string `yaml:"label" json:"label"`
}

// Schema is the fixed, ordered set of filter dimensions of a dataset.
// Every record carries one value per dimension, in schema order.
type Schema struct {
	Dimensions []Dimension `yaml:"dimensions" json:"dimensions"`
}

// DefaultSchema returns the residue-class schema: mod3, mod4, mod5, mod6.
func DefaultSchema() Schema {
	dims := make([]Dimension, 0, 4)
	for k := 3; k <= 6; k++ {
		dims = append(dims, Dimension{
			Name:    fmt.Sprintf("mod%d", k),
			Modulus: k,
			Label:   fmt.Sprintf("Modulo %d", k),
		})
	}
	return Schema{Dimensions: dims}
}

// Len returns the number of dimensions.
func (s Schema) Len() int {
	return len(s.Dimensions)
}

// Names returns the dimension names in schema order.
func (s Schema) Names() []string {
	names := make([]string, len(s.Dimensions))
	for i, d := range s.Dimensions {
		names[i] = d.Name
	}
	return names
}

// Lookup returns the position of the named dimension.
func (s Schema) Lookup(name string) (int, bool) {
	for i, d := range s.Dimensions {
		if d.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Equal reports whether both schemas name the same dimensions in the same order.
func (s Schema) Equal(other Schema) bool {
	if len(s.Dimensions) != len(other.Dimensions) {
		return false
	}
	for i := range s.Dimensions {
		if s.Dimensions[i].Name != other.Dimensions[i].Name {
			return false
		}
	}
	return true
}

// Validate checks that the schema has at least one dimension, that names are
// unique and non-empty, and that every modulus is positive.
func (s Schema) Validate() error {
	if len(s.Dimensions) == 0 {
		return errors.New("schema: no dimensions")
	}

	var errs []string
	seen := make(map[string]bool, len(s.Dimensions))
	for i, d := range s.Dimensions {
		name := strings.TrimSpace(d.Name)
		switch {
		case name == "":
			errs = append(errs, fmt.Sprintf("dimension %d: empty name", i))
		case name == "id" || name == "number":
			errs = append(errs, fmt.Sprintf("dimension %q: name is reserved", name))
		case seen[name]:
			errs = append(errs, fmt.Sprintf("dimension %q: duplicate name", name))
		}
		seen[name] = true

		if d.Modulus <= 0 {
			errs = append(errs, fmt.Sprintf("dimension %q: modulus must be positive", d.Name))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("schema: %s", strings.Join(errs, "; "))
	}
	return nil
}

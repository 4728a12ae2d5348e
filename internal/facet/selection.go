package facet

import (
	"fmt"
	"slices"
)

// Selection holds the selected values for every dimension of a schema.
// An empty set for a dimension means no restriction on that dimension.
//
// The zero value is not usable; build one with NewSelection. Selection values
// are copied on assignment only shallowly, so use Clone before handing one to
// another goroutine that may call Set.
type Selection struct {
	schema Schema
	sets   [][]int // per dimension, sorted and de-duplicated
}

// NewSelection returns an empty selection over the schema's dimensions.
func NewSelection(schema Schema) Selection {
	return Selection{
		schema: schema,
		sets:   make([][]int, schema.Len()),
	}
}

// Schema returns the schema the selection was built for.
func (s Selection) Schema() Schema {
	return s.schema
}

// Set replaces the selection for exactly one dimension. Other dimensions are
// untouched. Values are de-duplicated; a nil or empty slice clears the dimension.
func (s *Selection) Set(dimension string, values []int) error {
	i, ok := s.schema.Lookup(dimension)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownDimension, dimension)
	}
	for _, v := range values {
		if v < 0 {
			return fmt.Errorf("%w: %s=%d", ErrInvalidValue, dimension, v)
		}
	}

	set := slices.Clone(values)
	slices.Sort(set)
	s.sets[i] = slices.Compact(set)
	return nil
}

// Clear resets every dimension to the empty set.
func (s *Selection) Clear() {
	for i := range s.sets {
		s.sets[i] = nil
	}
}

// Values returns a copy of the selected values for a dimension, sorted ascending.
// Unknown dimensions yield nil.
func (s Selection) Values(dimension string) []int {
	i, ok := s.schema.Lookup(dimension)
	if !ok {
		return nil
	}
	return slices.Clone(s.sets[i])
}

// IsEmpty reports whether no dimension carries a restriction.
func (s Selection) IsEmpty() bool {
	for _, set := range s.sets {
		if len(set) > 0 {
			return false
		}
	}
	return true
}

// Active returns the number of dimensions with at least one selected value.
func (s Selection) Active() int {
	n := 0
	for _, set := range s.sets {
		if len(set) > 0 {
			n++
		}
	}
	return n
}

// Clone returns a deep copy.
func (s Selection) Clone() Selection {
	c := Selection{schema: s.schema, sets: make([][]int, len(s.sets))}
	for i, set := range s.sets {
		c.sets[i] = slices.Clone(set)
	}
	return c
}

// Without returns a copy of the selection with the named dimension's own
// filter removed. The receiver is not modified.
func (s Selection) Without(dimension string) Selection {
	i, ok := s.schema.Lookup(dimension)
	if !ok {
		return s.Clone()
	}
	return s.without(i)
}

func (s Selection) without(dim int) Selection {
	c := s.Clone()
	c.sets[dim] = nil
	return c
}

// Map returns the selection as dimension name to selected values.
// Every schema dimension is present; unrestricted ones map to an empty slice.
func (s Selection) Map() map[string][]int {
	m := make(map[string][]int, len(s.sets))
	for i, d := range s.schema.Dimensions {
		m[d.Name] = append([]int{}, s.sets[i]...)
	}
	return m
}

// Matches reports whether the record passes every dimension's filter.
func (s Selection) Matches(r Record) bool {
	for i, set := range s.sets {
		if len(set) == 0 {
			continue
		}
		if _, found := slices.BinarySearch(set, r.Values[i]); !found {
			return false
		}
	}
	return true
}

package ingest

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/crossfilter/internal/facet"
)

// LoadSchema reads a YAML schema file. An empty path returns the default schema.
func LoadSchema(path string) (facet.Schema, error) {
	if path == "" {
		return facet.DefaultSchema(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return facet.Schema{}, fmt.Errorf("read schema: %w", err)
	}
	s, err := ParseSchema(data)
	if err != nil {
		return facet.Schema{}, fmt.Errorf("schema %s: %w", path, err)
	}
	return s, nil
}

// ParseSchema decodes and validates a YAML schema document:
//
//	dimensions:
//	  - name: mod3
//	    modulus: 3
//	    label: Modulo 3
//
// Unknown keys are rejected. A missing label defaults to the name.
func ParseSchema(data []byte) (facet.Schema, error) {
	var s facet.Schema

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return facet.Schema{}, fmt.Errorf("decode yaml: %w", err)
	}

	for i := range s.Dimensions {
		if s.Dimensions[i].Label == "" {
			s.Dimensions[i].Label = s.Dimensions[i].Name
		}
	}
	if err := s.Validate(); err != nil {
		return facet.Schema{}, err
	}
	return s, nil
}

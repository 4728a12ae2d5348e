package ingest

import "github.com/JonMunkholm/crossfilter/internal/facet"

// DefaultSampleSize is the number of records a new session starts with.
const DefaultSampleSize = 1000

// GenerateSample returns records 1..n where each dimension holds the number
// modulo that dimension's modulus. n <= 0 yields an empty dataset.
func GenerateSample(n int, schema facet.Schema) *facet.Dataset {
	if n <= 0 {
		return facet.EmptyDataset(schema)
	}

	records := make([]facet.Record, n)
	for i := range records {
		num := i + 1
		values := make([]int, schema.Len())
		for d, dim := range schema.Dimensions {
			values[d] = num % dim.Modulus
		}
		records[i] = facet.Record{ID: num, Number: num, Values: values}
	}

	// Widths match the schema by construction.
	ds, _ := facet.NewDataset(schema, records)
	return ds
}

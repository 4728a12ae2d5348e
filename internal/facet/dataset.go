package facet

import "fmt"

// Record is one immutable row: an identifier assigned at ingestion, the
// display-only number column, and one value per schema dimension.
type Record struct {
	ID     int
	Number int
	Values []int
}

// Value returns the record's value for the dimension at position dim.
func (r Record) Value(dim int) int {
	return r.Values[dim]
}

// Fields returns the record as a column name to value map, including id and number.
func (r Record) Fields(schema Schema) map[string]int {
	m := make(map[string]int, len(r.Values)+2)
	m["id"] = r.ID
	m["number"] = r.Number
	for i, d := range schema.Dimensions {
		m[d.Name] = r.Values[i]
	}
	return m
}

// Dataset is an ordered sequence of records that share one schema.
// A Dataset is never modified after construction; ingestion builds a new one.
type Dataset struct {
	schema  Schema
	records []Record
}

// NewDataset builds a dataset, checking that every record carries exactly one
// value per schema dimension.
func NewDataset(schema Schema, records []Record) (*Dataset, error) {
	width := schema.Len()
	for i, r := range records {
		if len(r.Values) != width {
			return nil, fmt.Errorf("record %d (id %d): has %d values, schema has %d dimensions",
				i, r.ID, len(r.Values), width)
		}
	}
	return &Dataset{schema: schema, records: records}, nil
}

// EmptyDataset returns a dataset with no records.
func EmptyDataset(schema Schema) *Dataset {
	return &Dataset{schema: schema}
}

// Schema returns the dataset's schema.
func (d *Dataset) Schema() Schema {
	return d.schema
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.records)
}

// At returns the record at position i.
func (d *Dataset) At(i int) Record {
	return d.records[i]
}

// Records returns the underlying record slice. Callers must treat it as read-only.
func (d *Dataset) Records() []Record {
	return d.records
}

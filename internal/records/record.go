package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
)

const (
	// SlugKey is the field every record carries its final slug under.
	SlugKey = "slug"
	// SourceIndexKey names the synthetic source index in encoded output.
	SourceIndexKey = "_src_index"
)

// Record is one non-blank data row keyed by the header set.
type Record struct {
	// SourceIndex is the zero-based position among the non-blank data rows.
	SourceIndex int
	// Slug is unique within the Build call that produced the record.
	Slug string

	keys         []string
	slugAppended bool
	fields       map[string]string
}

// Get returns the value stored under key, or "" when the header is absent.
func (r Record) Get(key string) string {
	return r.fields[key]
}

// Lookup returns the value stored under key and whether the header exists.
func (r Record) Lookup(key string) (string, bool) {
	v, ok := r.fields[key]
	return v, ok
}

// Keys returns the field names in header order. The slug key is appended
// when the header set did not already contain it.
func (r Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Map returns a copy of the record's fields.
func (r Record) Map() map[string]string {
	out := make(map[string]string, len(r.fields))
	for k, v := range r.fields {
		out[k] = v
	}
	return out
}

// Label is a human-facing name for the record: name, then title, then slug.
func (r Record) Label() string {
	for _, key := range nameKeys {
		if v := r.fields[key]; v != "" {
			return v
		}
	}
	return r.Slug
}

// EncodedKeys returns the keys in encoded order: the header columns, then
// _src_index, then slug when the headers did not carry one. A header named
// _src_index keeps its column position and holds the source index.
func (r Record) EncodedKeys() []string {
	headers := r.keys
	if r.slugAppended {
		headers = headers[:len(headers)-1]
	}
	out := make([]string, 0, len(r.keys)+1)
	out = append(out, headers...)
	if !slices.Contains(headers, SourceIndexKey) {
		out = append(out, SourceIndexKey)
	}
	if r.slugAppended {
		out = append(out, SlugKey)
	}
	return out
}

// MarshalJSON encodes the record as a flat object in EncodedKeys order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.EncodedKeys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		enc, err := json.Marshal(key)
		if err != nil {
			return nil, fmt.Errorf("encode record key: %w", err)
		}
		buf.Write(enc)
		buf.WriteByte(':')
		if key == SourceIndexKey {
			buf.WriteString(strconv.Itoa(r.SourceIndex))
			continue
		}
		val, err := json.Marshal(r.fields[key])
		if err != nil {
			return nil, fmt.Errorf("encode record field %q: %w", key, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

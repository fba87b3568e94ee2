package corpus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// Results maps hearing ids to entity lists, keeping hearings in the order
// they were first seen. It is not safe for concurrent use.
type Results struct {
	order []string
	lists map[string][]string
}

func NewResults() *Results {
	return &Results{lists: make(map[string][]string)}
}

// Append adds entities to the hearing's list, creating an empty list the
// first time the hearing is seen.
func (r *Results) Append(hearing string, entities ...string) {
	list, ok := r.lists[hearing]
	if !ok {
		r.order = append(r.order, hearing)
		list = []string{}
	}
	r.lists[hearing] = append(list, entities...)
}

// Hearings returns the hearing ids in first-seen order.
func (r *Results) Hearings() []string {
	return append([]string(nil), r.order...)
}

func (r *Results) Entities(hearing string) []string {
	return r.lists[hearing]
}

// Lists returns every hearing's list in hearing order.
func (r *Results) Lists() [][]string {
	out := make([][]string, 0, len(r.order))
	for _, h := range r.order {
		out = append(out, r.lists[h])
	}
	return out
}

func (r *Results) Len() int { return len(r.order) }

// MarshalJSON writes one object with keys in hearing order.
func (r *Results) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, h := range r.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(h)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.lists[h])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads one object of string arrays, keeping key order.
func (r *Results) UnmarshalJSON(data []byte) error {
	*r = *NewResults()
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("results: expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		hearing, ok := tok.(string)
		if !ok {
			return fmt.Errorf("results: expected hearing id, got %v", tok)
		}
		var entities []string
		if err := dec.Decode(&entities); err != nil {
			return fmt.Errorf("results: hearing %s: %w", hearing, err)
		}
		r.Append(hearing, entities...)
	}
	_, err = dec.Token()
	return err
}

// Save writes the results to path as a single-line JSON object, replacing
// any existing file.
func (r *Results) Save(path string) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}

// LoadResults reads a file written by Save.
func LoadResults(path string) (*Results, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	r := NewResults()
	if err := json.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}
	return r, nil
}

// Package labelmap maps model class indices to human-readable category names.
package labelmap

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Unknown is returned for class indices the map does not cover.
const Unknown = "Unknown"

// Map is a fixed bijection between class indices and category names,
// loaded once at startup and immutable afterwards.
type Map struct {
	nameToIndex map[string]int
	indexToName map[int]string
}

// Load reads a label map file: a JSON object of category name to class index,
// e.g. {"World": 0, "Sports": 1, "Business": 2, "Sci/Tech": 3}.
func Load(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read label map: %w", err)
	}
	return Parse(data)
}

// Parse builds a Map from raw JSON bytes.
func Parse(data []byte) (*Map, error) {
	var raw map[string]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse label map: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("label map is empty")
	}

	m := &Map{
		nameToIndex: make(map[string]int, len(raw)),
		indexToName: make(map[int]string, len(raw)),
	}
	for name, idx := range raw {
		if name == "" {
			return nil, fmt.Errorf("label map contains an empty category name")
		}
		if existing, ok := m.indexToName[idx]; ok {
			return nil, fmt.Errorf("label map is not a bijection: index %d maps to both %q and %q", idx, existing, name)
		}
		m.nameToIndex[name] = idx
		m.indexToName[idx] = name
	}
	return m, nil
}

// Len returns the number of categories.
func (m *Map) Len() int {
	return len(m.indexToName)
}

// Name returns the category name for a class index, or Unknown.
func (m *Map) Name(idx int) string {
	if name, ok := m.indexToName[idx]; ok {
		return name
	}
	return Unknown
}

// Index returns the class index for a category name.
func (m *Map) Index(name string) (int, bool) {
	idx, ok := m.nameToIndex[name]
	return idx, ok
}

// Names returns all category names ordered by class index.
func (m *Map) Names() []string {
	indices := make([]int, 0, len(m.indexToName))
	for idx := range m.indexToName {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	names := make([]string, 0, len(indices))
	for _, idx := range indices {
		names = append(names, m.indexToName[idx])
	}
	return names
}

// Resolve translates a raw model output label into a category name.
// It accepts generic index labels ("LABEL_3"), bare indices ("3"), and
// category names the model may already emit verbatim.
func (m *Map) Resolve(label string) string {
	if _, ok := m.nameToIndex[label]; ok {
		return label
	}

	s := label
	if rest, ok := strings.CutPrefix(strings.ToUpper(s), "LABEL_"); ok {
		s = rest
	}
	if idx, err := strconv.Atoi(s); err == nil {
		return m.Name(idx)
	}
	return Unknown
}

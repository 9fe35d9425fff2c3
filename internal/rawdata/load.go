package rawdata

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoJournals is returned when a raw data file lists no journals.
var ErrNoJournals = errors.New("raw data contains no journals")

type dataFile struct {
	Journals []JournalRawData `yaml:"journals"`
}

// LoadFile reads a YAML raw data file.
func LoadFile(path string) (Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read raw data file %s: %w", path, err)
	}
	m, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to load raw data file %s: %w", path, err)
	}
	return m, nil
}

// Load decodes raw data from r. Unknown fields, empty identifiers and
// duplicate identifiers are rejected.
func Load(r io.Reader) (Map, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var f dataFile
	if err := decoder.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoJournals
		}
		return nil, fmt.Errorf("unable to decode raw data: %w", err)
	}
	if len(f.Journals) == 0 {
		return nil, ErrNoJournals
	}

	m := make(Map, len(f.Journals))
	for i, j := range f.Journals {
		j.ISSNL = strings.TrimSpace(j.ISSNL)
		if j.ISSNL == "" {
			return nil, fmt.Errorf("journal %d has no issnl", i)
		}
		if _, dup := m[j.ISSNL]; dup {
			return nil, fmt.Errorf("duplicate journal %s", j.ISSNL)
		}
		for variant := range j.OA {
			if !knownVariant(variant) {
				return nil, fmt.Errorf("journal %s has unknown oa variant %q", j.ISSNL, variant)
			}
		}
		m[j.ISSNL] = j
	}
	return m, nil
}

func knownVariant(v OAVariant) bool {
	switch v {
	case WithSubmittedWithBronze, WithSubmittedNoBronze, NoSubmittedWithBronze, NoSubmittedNoBronze:
		return true
	}
	return false
}

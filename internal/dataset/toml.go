package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Parse decodes dataset text. Every section is a TOML array of tables named
// after its series. Unknown keys are dropped; invalid entries are rejected,
// so the rest of the pipeline only ever sees well-formed months and labels.
func Parse(text string) (Dataset, error) {
	ds, _, err := decode(text)
	if err != nil {
		return Dataset{}, err
	}
	if err := ds.Validate(); err != nil {
		return Dataset{}, err
	}
	return ds, nil
}

// UnknownKeys lists the keys of text that Parse drops, such as misspelled
// series or fields.
func UnknownKeys(text string) ([]string, error) {
	_, md, err := decode(text)
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, k := range md.Undecoded() {
		keys = append(keys, k.String())
	}
	return keys, nil
}

func decode(text string) (Dataset, toml.MetaData, error) {
	var ds Dataset
	md, err := toml.Decode(text, &ds)
	if err != nil {
		return Dataset{}, md, fmt.Errorf("%w: %v", ErrDatasetParse, err)
	}
	return ds, md, nil
}

// Serialize encodes ds as TOML with every series sorted newest first.
func Serialize(ds Dataset) (string, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(ds.Sorted()); err != nil {
		return "", fmt.Errorf("encoding dataset: %w", err)
	}
	return buf.String(), nil
}

// Load reads and parses the dataset file at path.
func Load(path string) (Dataset, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is user-provided
	if err != nil {
		return Dataset{}, fmt.Errorf("%w: %v", ErrDatasetRead, err)
	}
	ds, err := Parse(string(data))
	if err != nil {
		return Dataset{}, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// Save serializes ds and writes it to path.
func Save(path string, ds Dataset) error {
	text, err := Serialize(ds)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatasetWrite, err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil { // #nosec G306 -- data file, not secret
		return fmt.Errorf("%w: %v", ErrDatasetWrite, err)
	}
	return nil
}

// LoadWithPatch loads the base dataset and, when patchPath is set, merges
// the patch file over it.
func LoadWithPatch(path, patchPath string) (Dataset, error) {
	ds, err := Load(path)
	if err != nil {
		return Dataset{}, err
	}
	if patchPath == "" {
		return ds, nil
	}
	patch, err := Load(patchPath)
	if err != nil {
		if errors.Is(err, ErrDatasetRead) {
			return Dataset{}, fmt.Errorf("patch: %w", err)
		}
		return Dataset{}, err
	}
	return ds.Merge(patch), nil
}

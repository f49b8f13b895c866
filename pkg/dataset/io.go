package dataset

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/synvisio/pkg/errors"
)

// Format is a dataset serialisation format.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatFromPath returns the format implied by the file extension.
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported dataset extension %q (want .json or .toml)", ext)
	}
}

// Decode reads a dataset from r and validates it.
func Decode(r io.Reader, format Format) (*Dataset, error) {
	var d Dataset
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&d); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode JSON dataset")
		}
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&d); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode TOML dataset")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", format)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Read loads the dataset at path. A dataset without a name is named after
// the file.
func Read(path string) (*Dataset, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "dataset %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()

	d, err := Decode(f, format)
	if err != nil {
		return nil, err
	}
	if d.Name == "" {
		d.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return d, nil
}

// Encode writes the dataset to w.
func Encode(w io.Writer, d *Dataset, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(d); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "encode JSON dataset")
		}
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(d); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "encode TOML dataset")
		}
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", format)
	}
	return nil
}

// Write stores the dataset at path in the format implied by its extension.
func Write(path string, d *Dataset) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, d, format); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "write %s", path)
	}
	return nil
}

// Marshal returns the canonical JSON form of the dataset, used for hashing.
func Marshal(d *Dataset) ([]byte, error) {
	return json.Marshal(d)
}

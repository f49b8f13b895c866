package dataset

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/synvisio/pkg/errors"
	"github.com/matzehuels/synvisio/pkg/genome"
)

const sampleTOML = `
name = "arabidopsis"
flipped = ["at2"]

[[chromosomes]]
id = "at1"
length = 300

[[chromosomes]]
id = "at2"
length = 200

[[chords]]
block_id = "b1"
source_id = "at1"
source_start = 10
source_end = 50
target_id = "at2"
target_start = 0
target_end = 40
`

const sampleJSON = `{
  "name": "arabidopsis",
  "flipped": ["at2"],
  "chromosomes": [{"id": "at1", "length": 300}, {"id": "at2", "length": 200}],
  "chords": [{"block_id": "b1", "source_id": "at1", "source_start": 10, "source_end": 50,
              "target_id": "at2", "target_start": 0, "target_end": 40}]
}`

func TestDecodeFormatsAgree(t *testing.T) {
	fromTOML, err := Decode(strings.NewReader(sampleTOML), FormatTOML)
	if err != nil {
		t.Fatalf("Decode(TOML): %v", err)
	}
	fromJSON, err := Decode(strings.NewReader(sampleJSON), FormatJSON)
	if err != nil {
		t.Fatalf("Decode(JSON): %v", err)
	}

	for name, d := range map[string]*Dataset{"toml": fromTOML, "json": fromJSON} {
		if d.Name != "arabidopsis" || len(d.Chromosomes) != 2 || len(d.Chords) != 1 {
			t.Errorf("%s: decoded %+v", name, d)
		}
		if !d.FlippedSet()["at2"] {
			t.Errorf("%s: flipped = %v", name, d.Flipped)
		}
	}
	if !fromTOML.Chords.Equal(fromJSON.Chords) {
		t.Error("TOML and JSON chords differ")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Dataset {
		d, _ := Decode(strings.NewReader(sampleJSON), FormatJSON)
		return d
	}
	tests := map[string]func(*Dataset){
		"no chromosomes":    func(d *Dataset) { d.Chromosomes = nil },
		"duplicate":         func(d *Dataset) { d.Chromosomes[1].ID = "at1" },
		"comma in id":       func(d *Dataset) { d.Chromosomes[1].ID = "at1,at2" },
		"unknown chord end": func(d *Dataset) { d.Chords[0].TargetID = "at9" },
		"negative position": func(d *Dataset) { d.Chords[0].SourceStart = -1 },
		"beyond length":     func(d *Dataset) { d.Chords[0].TargetEnd = 201 },
		"unknown flip":      func(d *Dataset) { d.Flipped = []string{"at9"} },
		"negative gap":      func(d *Dataset) { d.Gap = -0.1 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			d := base()
			mutate(d)
			if err := d.Validate(); !errors.Is(err, errors.ErrCodeInvalidDataset) {
				t.Errorf("Validate() = %v, want INVALID_DATASET", err)
			}
		})
	}
}

func TestArrangement(t *testing.T) {
	d, _ := Decode(strings.NewReader(sampleJSON), FormatJSON)
	arr := d.Arrangement()
	if arr[0].Start != 0 || arr[1].Start <= arr[0].End {
		t.Errorf("arrangement not laid out: %+v", arr)
	}
	if d.Chromosomes[0].End != 0 {
		t.Error("Arrangement modified the dataset")
	}
	if d.LayoutGap() != genome.DefaultGap {
		t.Errorf("LayoutGap = %g", d.LayoutGap())
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	d, _ := Decode(strings.NewReader(sampleJSON), FormatJSON)
	dir := t.TempDir()

	for _, name := range []string{"out.json", "out.toml"} {
		path := filepath.Join(dir, name)
		if err := Write(path, d); err != nil {
			t.Fatalf("Write(%s): %v", name, err)
		}
		got, err := Read(path)
		if err != nil {
			t.Fatalf("Read(%s): %v", name, err)
		}
		if !got.Chords.Equal(d.Chords) || len(got.Chromosomes) != 2 {
			t.Errorf("%s: round trip lost data: %+v", name, got)
		}
	}
}

func TestReadNamesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maize.json")
	data := strings.Replace(sampleJSON, `"name": "arabidopsis",`, "", 1)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	d, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if d.Name != "maize" {
		t.Errorf("Name = %q, want maize", d.Name)
	}
}

func TestReadErrors(t *testing.T) {
	if _, err := Read("dataset.yaml"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("unsupported extension: %v", err)
	}
	if _, err := Read(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: %v", err)
	}
	if _, err := Decode(bytes.NewBufferString("{"), FormatJSON); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("malformed JSON: %v", err)
	}
}

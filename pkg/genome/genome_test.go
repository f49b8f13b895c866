package genome

import (
	"math"
	"slices"
	"testing"

	"github.com/matzehuels/synvisio/pkg/errors"
)

func sample() Arrangement {
	return Arrangement{
		{ID: "A", Length: 100},
		{ID: "B", Length: 100},
		{ID: "C", Length: 100},
		{ID: "D", Length: 100},
	}
}

func TestArrangementSwapDoesNotMutate(t *testing.T) {
	arr := sample()
	swapped := arr.Swap(0, 2)

	if got := arr.IDs(); !slices.Equal(got, []string{"A", "B", "C", "D"}) {
		t.Errorf("original mutated: %v", got)
	}
	if got := swapped.IDs(); !slices.Equal(got, []string{"C", "B", "A", "D"}) {
		t.Errorf("Swap(0,2) = %v", got)
	}
	if same := arr.Swap(1, 1); !slices.Equal(same.IDs(), arr.IDs()) {
		t.Errorf("Swap(1,1) = %v, want identity", same.IDs())
	}
}

func TestArrangementReorder(t *testing.T) {
	arr := sample()

	got, err := arr.Reorder([]string{"D", "C", "B", "A"})
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	if !slices.Equal(got.IDs(), []string{"D", "C", "B", "A"}) {
		t.Errorf("Reorder = %v", got.IDs())
	}

	for _, bad := range [][]string{
		{"A", "B", "C"},
		{"A", "B", "C", "X"},
		{"A", "A", "B", "C"},
	} {
		if _, err := arr.Reorder(bad); !errors.Is(err, errors.ErrCodeInvalidArrangement) {
			t.Errorf("Reorder(%v) err = %v, want INVALID_ARRANGEMENT", bad, err)
		}
	}
}

func TestArrangementValidate(t *testing.T) {
	if err := sample().Validate(); err != nil {
		t.Errorf("Validate(sample) = %v", err)
	}
	tests := map[string]Arrangement{
		"duplicate": {{ID: "A", Length: 1}, {ID: "A", Length: 2}},
		"empty id":  {{ID: "", Length: 1}},
		"zero len":  {{ID: "A", Length: 0}},
		"separator": {{ID: "A,B", Length: 1}, {ID: "C", Length: 1}},
	}
	for name, arr := range tests {
		if err := arr.Validate(); err == nil {
			t.Errorf("%s: Validate() = nil, want error", name)
		}
	}
}

func TestLayoutProportional(t *testing.T) {
	arr := Layout(sample(), 0)
	for i, c := range arr {
		wantStart := float64(i) * math.Pi / 2
		if math.Abs(c.Start-wantStart) > 1e-9 || math.Abs(c.Span()-math.Pi/2) > 1e-9 {
			t.Errorf("%s: start=%g span=%g, want start=%g span=%g", c.ID, c.Start, c.Span(), wantStart, math.Pi/2)
		}
	}

	gapped := Layout(sample(), DefaultGap)
	last := gapped[len(gapped)-1]
	if math.Abs(last.End+DefaultGap-2*math.Pi) > 1e-9 {
		t.Errorf("last end = %g, want 2π-gap", last.End)
	}
	if gapped[1].Start-gapped[0].End-DefaultGap > 1e-12 {
		t.Errorf("gap not applied: %g", gapped[1].Start-gapped[0].End)
	}
}

func TestLayoutIgnoresOversizedGap(t *testing.T) {
	arr := Layout(sample(), 10)
	if math.Abs(arr[3].End-2*math.Pi) > 1e-9 {
		t.Errorf("end = %g, want 2π", arr[3].End)
	}
}

func TestChordAngles(t *testing.T) {
	c := Chromosome{ID: "A", Length: 100, Start: 1, End: 2}
	a := ChordAngles(c, 25, 75)
	if a.Start != 1.25 || a.End != 1.75 || a.Middle != 1.5 {
		t.Errorf("ChordAngles = %+v", a)
	}
}

func TestChordsEqualAndSignature(t *testing.T) {
	a := Chords{
		{BlockID: "b1", SourceID: "A", SourceStart: 1, SourceEnd: 2, TargetID: "B", TargetStart: 3, TargetEnd: 4},
		{BlockID: "b2", SourceID: "C", SourceStart: 1, SourceEnd: 2, TargetID: "D", TargetStart: 3, TargetEnd: 4},
	}
	b := slices.Clone(a)
	if !a.Equal(b) || a.Signature() != b.Signature() {
		t.Error("identical chord lists should be equal")
	}
	slices.Reverse(b)
	if a.Equal(b) || a.Signature() == b.Signature() {
		t.Error("equality must be order-sensitive")
	}
	if got := a.ChromosomeIDs(); !slices.Equal(got, []string{"A", "B", "C", "D"}) {
		t.Errorf("ChromosomeIDs = %v", got)
	}
}

func TestApplyFlips(t *testing.T) {
	chords := Chords{{BlockID: "b1", SourceID: "A", SourceStart: 20, SourceEnd: 28, TargetID: "B", TargetStart: 1, TargetEnd: 13}}
	lengths := map[string]float64{"A": 28, "B": 28}

	flipped := chords.ApplyFlips(lengths, NewFlipped("B"))
	if flipped[0].SourceStart != 20 || flipped[0].SourceEnd != 28 {
		t.Errorf("unflipped source changed: %+v", flipped[0])
	}
	if flipped[0].TargetStart != 15 || flipped[0].TargetEnd != 27 {
		t.Errorf("flipped target = [%g,%g], want [15,27]", flipped[0].TargetStart, flipped[0].TargetEnd)
	}
	if chords[0].TargetStart != 1 {
		t.Error("ApplyFlips mutated its receiver")
	}
}

func TestFlippedToggle(t *testing.T) {
	f := NewFlipped("A")
	g := f.Toggle("B").Toggle("A")
	if !f["A"] || f["B"] {
		t.Errorf("Toggle mutated receiver: %v", f)
	}
	if got := g.IDs(); !slices.Equal(got, []string{"B"}) {
		t.Errorf("IDs = %v, want [B]", got)
	}
	var empty Flipped
	if got := empty.Toggle("X").IDs(); !slices.Equal(got, []string{"X"}) {
		t.Errorf("nil Toggle = %v", got)
	}
}

func TestCompareIDs(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"N2", "N10", -1},
		{"N10", "N2", 1},
		{"at1", "AT1", 1}, // ties broken by raw bytes
		{"at1", "at1", 0},
		{"at01", "at1", -1},
		{"bd1", "at9", 1},
		{"chr", "chr1", -1},
	}
	for _, tt := range tests {
		got := CompareIDs(tt.a, tt.b)
		if (got < 0 && tt.want >= 0) || (got > 0 && tt.want <= 0) || (got == 0 && tt.want != 0) {
			t.Errorf("CompareIDs(%q, %q) = %d, want sign %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSortIDs(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"numeric", []string{"N10", "N2", "N1"}, []string{"N1", "N2", "N10"}},
		{"larger group first", []string{"hs1", "at2", "at1"}, []string{"at1", "at2", "hs1"}},
		{"folded prefix", []string{"hsX", "hs2", "hs1", "at1"}, []string{"hs1", "hs2", "hsX", "at1"}},
		{"digits only", []string{"10", "2"}, []string{"2", "10"}},
		{"order independent", []string{"at2", "at10", "at1"}, []string{"at1", "at2", "at10"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SortIDs(tt.in); !slices.Equal(got, tt.want) {
				t.Errorf("SortIDs(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestPrefix(t *testing.T) {
	if got := Prefix("at10"); got != "at" {
		t.Errorf("Prefix(at10) = %q", got)
	}
	if got := Prefix("12"); got != "" {
		t.Errorf("Prefix(12) = %q", got)
	}
}

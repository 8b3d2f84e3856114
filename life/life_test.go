package life

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCellsOf(t *testing.T) {
	got := CellsOf([][]byte{
		{0, 1, 0},
		{0, 0, 0},
		{1, 0, 1},
	})
	want := []Cell{{0, 1}, {2, 0}, {2, 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CellsOf mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultWorlds(t *testing.T) {
	worlds := DefaultWorlds()
	if len(worlds) != 1 || worlds[0].Name != DemoWorld {
		t.Fatalf("DefaultWorlds = %v", worlds)
	}
	w := worlds[0]
	if err := w.Validate(); err != nil {
		t.Fatal(err)
	}
	if len(w.Distribution) != 21 {
		t.Errorf("demo world has %d live cells, wanted 21", len(w.Distribution))
	}
	if diff := cmp.Diff(ConwayConstants, w.Constants); diff != "" {
		t.Errorf("constants mismatch (-want +got):\n%s", diff)
	}

	// Each call returns fresh values.
	worlds[0].Distribution[0].Row = 99
	if DefaultWorlds()[0].Distribution[0].Row == 99 {
		t.Fatalf("DefaultWorlds shares state between calls")
	}
}

func TestDefaultPatterns(t *testing.T) {
	patterns := DefaultPatterns()
	if len(patterns) != 1 || patterns[0].Name != DemoPattern {
		t.Fatalf("DefaultPatterns = %v", patterns)
	}
	if err := patterns[0].Validate(); err != nil {
		t.Fatal(err)
	}
	rows, cols := patterns[0].Size()
	if rows != 5 || cols != 4 {
		t.Errorf("Size = %dx%d, wanted 5x4", rows, cols)
	}
}

func TestPatternString(t *testing.T) {
	got := DefaultPatterns()[0].String()
	want := "Pattern PatronDemo: 5x4 [0000 1010 0001 0111 0000]"
	if got != want {
		t.Errorf("String() = %q, wanted %q", got, want)
	}
}

func TestWorldString(t *testing.T) {
	w := World{Name: "W", Constants: []int{2, 3, 3}, Distribution: []Cell{{1, 2}}}
	if got := w.String(); got != "World W: constants=[2 3 3], cells=1 [{1 2}]" {
		t.Errorf("String() = %q", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"world without name", World{}.Validate(), "name is required"},
		{"world bad constant", World{Name: "W", Constants: []int{9}}.Validate(), "out of range"},
		{"world negative cell", World{Name: "W", Distribution: []Cell{{-1, 0}}}.Validate(), "negative"},
		{"pattern without name", Pattern{}.Validate(), "name is required"},
		{"pattern ragged", Pattern{Name: "P", Scheme: []Row{{0, 1}, {1}}}.Validate(), "row 1"},
		{"pattern bad cell", Pattern{Name: "P", Scheme: []Row{{2}}}.Validate(), "wanted 0 or 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil || !strings.Contains(tt.err.Error(), tt.want) {
				t.Fatalf("Validate() = %v, wanted error containing %q", tt.err, tt.want)
			}
		})
	}
}

func TestWorldClone(t *testing.T) {
	w := DefaultWorlds()[0]
	c := w.Clone()
	c.Constants[0] = 7
	c.Distribution[0].Col = 7
	if w.Constants[0] == 7 || w.Distribution[0].Col == 7 {
		t.Fatalf("Clone shares slices with the original")
	}
}

func TestPatternJSON(t *testing.T) {
	raw, err := json.Marshal(DefaultPatterns()[0])
	if err != nil {
		t.Fatal(err)
	}
	want := `{"name":"PatronDemo","scheme":["0000","1010","0001","0111","0000"]}`
	if string(raw) != want {
		t.Errorf("Marshal = %s, wanted %s", raw, want)
	}

	var p Pattern
	if err := json.Unmarshal(raw, &p); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(DefaultPatterns()[0], p); diff != "" {
		t.Errorf("Unmarshal mismatch (-want +got):\n%s", diff)
	}

	if err := json.Unmarshal([]byte(`{"scheme":["012"]}`), &p); err == nil || !strings.Contains(err.Error(), "only 0 and 1") {
		t.Errorf("Unmarshal(bad row) = %v", err)
	}
}

func TestPatternClone(t *testing.T) {
	p := DefaultPatterns()[0]
	c := p.Clone()
	c.Scheme[0][0] = 1
	if p.Scheme[0][0] != 0 {
		t.Fatalf("Clone shares rows with the original")
	}
}

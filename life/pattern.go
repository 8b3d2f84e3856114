package life

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Pattern is a named cell arrangement that can be placed into a world.
type Pattern struct {
	Name   string `msgpack:"n" json:"name"`
	Scheme []Row  `msgpack:"s" json:"scheme"`
}

func (p Pattern) RecordKey() string {
	return p.Name
}

func (p Pattern) Size() (rows, cols int) {
	if len(p.Scheme) == 0 {
		return 0, 0
	}
	return len(p.Scheme), len(p.Scheme[0])
}

func (p Pattern) String() string {
	rows, cols := p.Size()
	var buf strings.Builder
	fmt.Fprintf(&buf, "Pattern %s: %dx%d [", p.Name, rows, cols)
	for i, row := range p.Scheme {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(row.String())
	}
	buf.WriteByte(']')
	return buf.String()
}

func (p Pattern) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("pattern name is required")
	}
	_, cols := p.Size()
	for i, row := range p.Scheme {
		if len(row) != cols {
			return fmt.Errorf("pattern %s: row %d has %d cells, wanted %d", p.Name, i, len(row), cols)
		}
		for j, v := range row {
			if v > 1 {
				return fmt.Errorf("pattern %s: cell %d,%d = %d, wanted 0 or 1", p.Name, i, j, v)
			}
		}
	}
	return nil
}

// Clone returns a deep copy.
func (p Pattern) Clone() Pattern {
	if p.Scheme != nil {
		scheme := make([]Row, len(p.Scheme))
		for i, row := range p.Scheme {
			scheme[i] = slices.Clone(row)
		}
		p.Scheme = scheme
	}
	return p
}

// Row is one line of a pattern scheme, one byte per cell. In JSON it is
// written as a string of 0 and 1 digits, like "0110".
type Row []byte

func (r Row) String() string {
	b := make([]byte, len(r))
	for i, v := range r {
		b[i] = '0' + v
	}
	return string(b)
}

func (r Row) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Row) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	row := make(Row, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '0' && s[i] != '1' {
			return fmt.Errorf("invalid pattern row %q: only 0 and 1 are allowed", s)
		}
		row[i] = s[i] - '0'
	}
	*r = row
	return nil
}

package lifedb

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Describe returns a dump of every record, one per line, in key order.
// Records implementing fmt.Stringer are printed with String, others as JSON.
// Nil entries are skipped.
func (s *Store[R]) Describe() string {
	var buf strings.Builder
	for _, r := range s.All() {
		if isNilRecord(r) {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(describeRecord(r))
	}
	return buf.String()
}

// Keys returns the keys of every record, one per line, in key order.
func (s *Store[R]) Keys() string {
	return strings.Join(s.AllKeys(), "\n")
}

func describeRecord(r any) string {
	if sr, ok := r.(fmt.Stringer); ok {
		return sr.String()
	}
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Sprintf("** ERROR: %v", err)
	}
	return string(raw)
}

func isNilRecord(r any) bool {
	if r == nil {
		return true
	}
	v := reflect.ValueOf(r)
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return v.IsNil()
	}
	return false
}

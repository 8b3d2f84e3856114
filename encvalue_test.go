package lifedb

import (
	"errors"
	"strings"
	"testing"
)

func TestValue_RoundTrip(t *testing.T) {
	data := []byte("hello")
	raw := encodeValue(vfVer1|vfJSON, 300, data)

	var vle value
	ensure(vle.decode(raw))
	deepEqual(t, vle.Flags, vfVer1|vfJSON)
	deepEqual(t, vle.Flags.encoding(), JSON)
	deepEqual(t, vle.ModCount, uint64(300))
	deepEqual(t, string(vle.Data), "hello")
}

func TestValue_EmptyData(t *testing.T) {
	raw := encodeValue(vfVer1, 0, nil)
	var vle value
	ensure(vle.decode(raw))
	deepEqual(t, len(vle.Data), 0)
	deepEqual(t, vle.Flags.encoding(), MsgPack)
}

func TestValue_DecodeErrors(t *testing.T) {
	good := encodeValue(vfVer1, 1, []byte("payload"))
	tests := []struct {
		name string
		data []byte
		msg  string
	}{
		{"short", []byte{1, 2}, "at least"},
		{"unsupported flags", append([]byte{0x40}, good[1:]...), "unsupported flags"},
		{"unsupported version", append([]byte{byte(vfJSON)}, good[1:]...), "unsupported version"},
		{"checksum", append(good[:len(good)-1:len(good)-1], 'X'), "checksum mismatch"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var vle value
			err := vle.decode(tt.data)
			var de *DataError
			if !errors.As(err, &de) {
				t.Fatalf("decode err = %v, wanted *DataError", err)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Fatalf("decode err = %q, wanted it to contain %q", err, tt.msg)
			}
		})
	}
}

func TestEncoding_Parse(t *testing.T) {
	deepEqual(t, must(ParseEncoding("")), MsgPack)
	deepEqual(t, must(ParseEncoding("MsgPack")), MsgPack)
	deepEqual(t, must(ParseEncoding("json")), JSON)
	if _, err := ParseEncoding("xml"); err == nil {
		t.Fatalf("ParseEncoding(xml) succeeded")
	}
	deepEqual(t, JSON.String(), "json")
	deepEqual(t, Encoding(9).String(), "Encoding(9)")
}

func TestEncoding_MsgPackRoundTrip(t *testing.T) {
	w := Widget{Name: "m", Color: "teal", Size: -4}
	data := must(MsgPack.encode(nil, w))
	var out Widget
	ensure(MsgPack.decode(data, &out))
	deepEqual(t, out, w)

	err := MsgPack.decode([]byte{0xc1}, &out)
	var de *DataError
	if !errors.As(err, &de) {
		t.Fatalf("decode(garbage) err = %v, wanted *DataError", err)
	}
}

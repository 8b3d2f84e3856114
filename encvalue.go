package lifedb

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

type valueFlags uint64

const (
	vfVerBit0 = valueFlags(1 << iota)
	vfVerBit1
	vfVerBit2
	vfVerBit3
	vfEncodingBit0

	vfVerMask       = (vfVerBit0 | vfVerBit1 | vfVerBit2 | vfVerBit3)
	vfVer1          = vfVerBit0
	vfJSON          = vfEncodingBit0
	vfSupportedMask = (vfVer1 | vfJSON)

	checksumSize       = 8
	minValueSize       = 2 + checksumSize
	maxValueHeaderSize = binary.MaxVarintLen64*2 + checksumSize
)

func (vf valueFlags) ver() valueFlags {
	return vf & vfVerMask
}

func (vf valueFlags) encoding() Encoding {
	if vf&vfJSON != 0 {
		return JSON
	}
	return MsgPack
}

// value is a stored record: header followed by the encoded payload.
//
// Header: flags (uvarint), mod count (uvarint), xxhash64 of data (8 bytes LE).
type value struct {
	Flags    valueFlags
	ModCount uint64
	Data     []byte
}

func appendValueHeader(buf []byte, flags valueFlags, modCount uint64, data []byte) []byte {
	if (flags &^ vfSupportedMask) != 0 {
		panic(fmt.Errorf("invalid flags %x", flags))
	}
	buf = binary.AppendUvarint(buf, uint64(flags))
	buf = binary.AppendUvarint(buf, modCount)
	buf = binary.LittleEndian.AppendUint64(buf, xxhash.Sum64(data))
	return buf
}

func encodeValue(flags valueFlags, modCount uint64, data []byte) []byte {
	buf := make([]byte, 0, maxValueHeaderSize+len(data))
	buf = appendValueHeader(buf, flags, modCount, data)
	return append(buf, data...)
}

func (vle *value) decode(data []byte) error {
	orig := data
	if len(data) < minValueSize {
		return dataErrf(orig, 0, nil, "invalid value: at least %d bytes required", minValueSize)
	}

	v, n := binary.Uvarint(data)
	if n <= 0 {
		return dataErrf(orig, 0, nil, "invalid value: bad flags")
	}
	if (v & ^uint64(vfSupportedMask)) != 0 {
		return dataErrf(orig, 0, nil, "invalid value: unsupported flags %x", v)
	}
	vle.Flags = valueFlags(v)
	if vle.Flags.ver() != vfVer1 {
		return dataErrf(orig, 0, nil, "invalid value: unsupported version %d", vle.Flags.ver())
	}
	data = data[n:]

	v, n = binary.Uvarint(data)
	if n <= 0 {
		return dataErrf(orig, len(orig)-len(data), nil, "invalid value: bad mod count")
	}
	vle.ModCount = v
	data = data[n:]

	if len(data) < checksumSize {
		return dataErrf(orig, len(orig)-len(data), nil, "invalid value: truncated checksum")
	}
	sum := binary.LittleEndian.Uint64(data)
	data = data[checksumSize:]
	if actual := xxhash.Sum64(data); actual != sum {
		return dataErrf(orig, len(orig)-len(data), nil, "invalid value: checksum mismatch (stored %016x, actual %016x)", sum, actual)
	}
	vle.Data = data
	return nil
}

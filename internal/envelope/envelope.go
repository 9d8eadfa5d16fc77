// Package envelope frames cached entity payloads with the revision they
// were read at, so a reader can reject entries older than the current
// revision without decoding the payload.
package envelope

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const (
	version byte = 1
	hdrLen       = 4 + 1 + 8 + 2 // magic | ver | rev | idLen
	maxID        = 0xFFFF
)

var (
	ErrCorrupt = errors.New("redcoll: corrupt cache entry")
	ErrIDLen   = errors.New("redcoll: entity id empty or longer than 65535 bytes")
	magic4     = [...]byte{'R', 'C', 'O', 'L'}
)

// Entry is one cached entity.
//
//	magic(4) | ver(1) | rev(u64 be) | idLen(u16 be) | id | vlen(u32 be) | payload(vlen)
type Entry struct {
	ID       string
	Revision uint64
	Payload  []byte
}

func Encode(e Entry) ([]byte, error) {
	if l := len(e.ID); l == 0 || l > maxID {
		return nil, ErrIDLen
	}
	var buf bytes.Buffer
	buf.Grow(hdrLen + len(e.ID) + 4 + len(e.Payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)

	var u8 [8]byte
	var u4 [4]byte
	var u2 [2]byte

	binary.BigEndian.PutUint64(u8[:], e.Revision)
	buf.Write(u8[:])

	binary.BigEndian.PutUint16(u2[:], uint16(len(e.ID)))
	buf.Write(u2[:])
	buf.WriteString(e.ID)

	binary.BigEndian.PutUint32(u4[:], uint32(len(e.Payload)))
	buf.Write(u4[:])
	buf.Write(e.Payload)
	return buf.Bytes(), nil
}

// Decode parses b. The returned payload aliases b.
func Decode(b []byte) (Entry, error) {
	if len(b) < hdrLen || !bytes.Equal(b[:4], magic4[:]) || b[4] != version {
		return Entry{}, ErrCorrupt
	}
	off := 5

	rev := binary.BigEndian.Uint64(b[off : off+8])
	off += 8

	idLen := int(binary.BigEndian.Uint16(b[off : off+2]))
	off += 2
	if idLen == 0 || idLen > len(b)-off {
		return Entry{}, ErrCorrupt
	}
	id := string(b[off : off+idLen])
	off += idLen

	if off+4 > len(b) {
		return Entry{}, ErrCorrupt
	}
	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen != len(b)-off { // no trailing bytes
		return Entry{}, ErrCorrupt
	}

	return Entry{ID: id, Revision: rev, Payload: b[off : off+vlen]}, nil
}

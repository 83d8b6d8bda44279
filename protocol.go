package beestore

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// EncodeRequest frames argv as one wire request: u32 total_len, u32 argc,
// then (u32 size, bytes) per argument. It is the client-side
// counterpart of tryParseFrame and is exported for the bootstrap
// collaborators (cmd/beestore-cli, sim) that are outside the core's scope.
func EncodeRequest(argv [][]byte) []byte {
	var body bytes.Buffer
	var hdr [4]byte

	binary.LittleEndian.PutUint32(hdr[:], uint32(len(argv)))
	body.Write(hdr[:])
	for _, a := range argv {
		binary.LittleEndian.PutUint32(hdr[:], uint32(len(a)))
		body.Write(hdr[:])
		body.Write(a)
	}

	msg := make([]byte, 0, 4+body.Len())
	binary.LittleEndian.PutUint32(hdr[:], uint32(body.Len()))
	msg = append(msg, hdr[:]...)
	msg = append(msg, body.Bytes()...)
	return msg
}

// ReadReply reads exactly one length-prefixed reply message from r and
// decodes its tagged value.
func ReadReply(r io.Reader) (Reply, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Reply{}, err
	}
	totalLen := binary.LittleEndian.Uint32(hdr[:])
	if totalLen > maxMessageSize {
		return Reply{}, fmt.Errorf("beestore: reply declares %d bytes, exceeds %d", totalLen, maxMessageSize)
	}

	body := make([]byte, totalLen)
	if _, err := io.ReadFull(r, body); err != nil {
		return Reply{}, err
	}

	val, n, err := decodeValue(body)
	if err != nil {
		return Reply{}, err
	}
	if n != len(body) {
		return Reply{}, fmt.Errorf("beestore: trailing bytes after reply value")
	}
	return val, nil
}

// decodeValue parses one tagged value from the front of b, returning the
// value and the number of bytes it consumed.
func decodeValue(b []byte) (Reply, int, error) {
	if len(b) < 1 {
		return Reply{}, 0, fmt.Errorf("beestore: empty reply value")
	}
	tag := b[0]
	b = b[1:]
	off := 1

	switch tag {
	case TagNil:
		return Reply{Tag: TagNil}, off, nil

	case TagErr:
		if len(b) < 8 {
			return Reply{}, 0, fmt.Errorf("beestore: truncated err reply")
		}
		code := int32(binary.LittleEndian.Uint32(b[:4]))
		msgLen := binary.LittleEndian.Uint32(b[4:8])
		b = b[8:]
		off += 8
		if uint32(len(b)) < msgLen {
			return Reply{}, 0, fmt.Errorf("beestore: truncated err message")
		}
		return Reply{Tag: TagErr, ErrCode: code, ErrMsg: append([]byte(nil), b[:msgLen]...)}, off + int(msgLen), nil

	case TagStr:
		if len(b) < 4 {
			return Reply{}, 0, fmt.Errorf("beestore: truncated str reply")
		}
		strLen := binary.LittleEndian.Uint32(b[:4])
		b = b[4:]
		off += 4
		if uint32(len(b)) < strLen {
			return Reply{}, 0, fmt.Errorf("beestore: truncated str value")
		}
		return Reply{Tag: TagStr, Str: append([]byte(nil), b[:strLen]...)}, off + int(strLen), nil

	case TagInt:
		if len(b) < 8 {
			return Reply{}, 0, fmt.Errorf("beestore: truncated int reply")
		}
		return Reply{Tag: TagInt, Int: int64(binary.LittleEndian.Uint64(b[:8]))}, off + 8, nil

	case TagDbl:
		if len(b) < 8 {
			return Reply{}, 0, fmt.Errorf("beestore: truncated dbl reply")
		}
		bits := binary.LittleEndian.Uint64(b[:8])
		return Reply{Tag: TagDbl, Dbl: math.Float64frombits(bits)}, off + 8, nil

	case TagArr:
		if len(b) < 4 {
			return Reply{}, 0, fmt.Errorf("beestore: truncated arr reply")
		}
		count := binary.LittleEndian.Uint32(b[:4])
		b = b[4:]
		off += 4
		items := make([]Reply, 0, count)
		for i := uint32(0); i < count; i++ {
			v, n, err := decodeValue(b)
			if err != nil {
				return Reply{}, 0, err
			}
			items = append(items, v)
			b = b[n:]
			off += n
		}
		return Reply{Tag: TagArr, Arr: items}, off, nil

	default:
		return Reply{}, 0, fmt.Errorf("beestore: unknown reply tag %d", tag)
	}
}

// FormatReply renders r the way the client bootstrap prints a decoded
// reply: a one-line human-readable form per tag, arrays rendered
// recursively between "(arr) len=<n>" and "(arr) end" markers.
func FormatReply(r Reply) []string {
	switch r.Tag {
	case TagNil:
		return []string{"(nil)"}
	case TagErr:
		return []string{fmt.Sprintf("(err) %d %s", r.ErrCode, r.ErrMsg)}
	case TagStr:
		return []string{fmt.Sprintf("(str) %s", r.Str)}
	case TagInt:
		return []string{fmt.Sprintf("(int) %d", r.Int)}
	case TagDbl:
		return []string{fmt.Sprintf("(dbl) %v", r.Dbl)}
	case TagArr:
		lines := []string{fmt.Sprintf("(arr) len=%d", len(r.Arr))}
		for _, item := range r.Arr {
			lines = append(lines, FormatReply(item)...)
		}
		return append(lines, "(arr) end")
	default:
		return []string{fmt.Sprintf("(unknown tag %d)", r.Tag)}
	}
}

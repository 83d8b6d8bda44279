package beestore

import (
	"encoding/binary"
	"errors"
)

// Wire limits. total_len > maxMessageSize or argc > maxArgc are framing
// faults: connection-fatal, no reply emitted.
const (
	maxMessageSize = 4096
	maxArgc        = 1024
	lengthPrefix   = 4
)

// ErrFraming marks a connection-fatal parse error: oversize message,
// malformed argc/arg-size, or tail garbage after the declared args. The
// caller (Connection) must transition to CLOSED without emitting a reply.
var ErrFraming = errors.New("beestore: framing error")

// tryParseFrame attempts to parse one complete request out of buf, which
// holds whatever bytes have accumulated in a connection's read buffer so
// far. It returns the parsed argument vector, the number of bytes consumed
// from buf (the full message including its 4-byte length prefix), and
// ok=false if buf does not yet hold a complete frame (the caller should
// wait for more bytes, not an error). A non-nil error is always
// connection-fatal.
func tryParseFrame(buf []byte) (argv [][]byte, consumed int, ok bool, err error) {
	if len(buf) < lengthPrefix {
		return nil, 0, false, nil
	}
	totalLen := binary.LittleEndian.Uint32(buf[:lengthPrefix])
	if totalLen > maxMessageSize {
		return nil, 0, false, ErrFraming
	}
	need := lengthPrefix + int(totalLen)
	if len(buf) < need {
		return nil, 0, false, nil
	}

	body := buf[lengthPrefix:need]
	if len(body) < lengthPrefix {
		return nil, 0, false, ErrFraming
	}
	argc := binary.LittleEndian.Uint32(body[:lengthPrefix])
	if argc > maxArgc {
		return nil, 0, false, ErrFraming
	}
	body = body[lengthPrefix:]

	args := make([][]byte, 0, argc)
	for i := uint32(0); i < argc; i++ {
		if len(body) < lengthPrefix {
			return nil, 0, false, ErrFraming
		}
		size := binary.LittleEndian.Uint32(body[:lengthPrefix])
		body = body[lengthPrefix:]
		if uint32(len(body)) < size {
			return nil, 0, false, ErrFraming
		}
		args = append(args, body[:size])
		body = body[size:]
	}
	if len(body) != 0 {
		// tail garbage: declared total_len didn't match the parsed argv.
		return nil, 0, false, ErrFraming
	}
	return args, need, true, nil
}

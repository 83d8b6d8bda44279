package beestore

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Reply tags: the first byte of every tagged value on the wire.
const (
	TagNil byte = iota
	TagErr
	TagStr
	TagInt
	TagDbl
	TagArr
)

// Error codes carried by TagErr replies.
const (
	ErrUnknown int32 = 1
	ErrTooBig  int32 = 2
	ErrType    int32 = 3
	ErrArg     int32 = 4
)

// Reply is a tagged sum over the six wire value kinds:
// Nil, Err(code, msg), Str(bytes), Int(i64), Dbl(f64), Arr([]Reply).
// Only the fields relevant to Tag are meaningful.
type Reply struct {
	Tag     byte
	ErrCode int32
	ErrMsg  []byte
	Str     []byte
	Int     int64
	Dbl     float64
	Arr     []Reply
}

func ReplyNil() Reply { return Reply{Tag: TagNil} }

func ReplyErr(code int32, msg string) Reply {
	return Reply{Tag: TagErr, ErrCode: code, ErrMsg: []byte(msg)}
}

func ReplyStr(b []byte) Reply { return Reply{Tag: TagStr, Str: b} }

func ReplyInt(i int64) Reply { return Reply{Tag: TagInt, Int: i} }

func ReplyDbl(f float64) Reply { return Reply{Tag: TagDbl, Dbl: f} }

func ReplyArr(items []Reply) Reply { return Reply{Tag: TagArr, Arr: items} }

// encodeValue appends the tagged-value encoding of r to buf. Every command
// in this dispatcher materializes its whole reply before encoding, so the
// array count is always known up front and a direct prefix-count encode
// suffices; no placeholder backfill is needed.
func encodeValue(buf *bytes.Buffer, r Reply) {
	buf.WriteByte(r.Tag)
	switch r.Tag {
	case TagNil:
	case TagErr:
		var hdr [4]byte
		binary.LittleEndian.PutUint32(hdr[:], uint32(r.ErrCode))
		buf.Write(hdr[:])
		binary.LittleEndian.PutUint32(hdr[:], uint32(len(r.ErrMsg)))
		buf.Write(hdr[:])
		buf.Write(r.ErrMsg)
	case TagStr:
		var hdr [4]byte
		binary.LittleEndian.PutUint32(hdr[:], uint32(len(r.Str)))
		buf.Write(hdr[:])
		buf.Write(r.Str)
	case TagInt:
		var hdr [8]byte
		binary.LittleEndian.PutUint64(hdr[:], uint64(r.Int))
		buf.Write(hdr[:])
	case TagDbl:
		var hdr [8]byte
		binary.LittleEndian.PutUint64(hdr[:], math.Float64bits(r.Dbl))
		buf.Write(hdr[:])
	case TagArr:
		var hdr [4]byte
		binary.LittleEndian.PutUint32(hdr[:], uint32(len(r.Arr)))
		buf.Write(hdr[:])
		for _, item := range r.Arr {
			encodeValue(buf, item)
		}
	}
}

// encodeReply encodes r as the whole body of a reply message. If the
// result would exceed maxMessageSize, it is replaced by
// ERR(TOO_BIG, "response is too big").
func encodeReply(r Reply) []byte {
	var buf bytes.Buffer
	encodeValue(&buf, r)
	if buf.Len() > maxMessageSize {
		buf.Reset()
		encodeValue(&buf, ReplyErr(ErrTooBig, "response is too big"))
	}
	return buf.Bytes()
}

// appendFramedReply appends r's length-prefixed wire encoding to dst,
// returning the extended slice.
func appendFramedReply(dst []byte, r Reply) []byte {
	body := encodeReply(r)
	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(len(body)))
	dst = append(dst, hdr[:]...)
	dst = append(dst, body...)
	return dst
}

package beestore

import (
	"encoding/binary"
	"testing"
)

func buildFrame(argv [][]byte) []byte {
	return EncodeRequest(argv)
}

func TestTryParseFrameIncomplete(t *testing.T) {
	frame := buildFrame([][]byte{[]byte("get"), []byte("x")})

	_, _, ok, err := tryParseFrame(frame[:len(frame)-1])
	if err != nil {
		t.Fatalf("unexpected error on incomplete frame: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false for an incomplete frame")
	}
}

func TestTryParseFrameComplete(t *testing.T) {
	frame := buildFrame([][]byte{[]byte("set"), []byte("foo"), []byte("bar")})

	argv, consumed, ok, err := tryParseFrame(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected ok=true for a complete frame")
	}
	if consumed != len(frame) {
		t.Fatalf("consumed %d, want %d", consumed, len(frame))
	}
	want := []string{"set", "foo", "bar"}
	if len(argv) != len(want) {
		t.Fatalf("got %d args, want %d", len(argv), len(want))
	}
	for i, w := range want {
		if string(argv[i]) != w {
			t.Fatalf("arg %d = %q, want %q", i, argv[i], w)
		}
	}
}

func TestTryParseFramePipelined(t *testing.T) {
	first := buildFrame([][]byte{[]byte("get"), []byte("a")})
	second := buildFrame([][]byte{[]byte("get"), []byte("b")})
	buf := append(append([]byte{}, first...), second...)

	argv, consumed, ok, err := tryParseFrame(buf)
	if err != nil || !ok {
		t.Fatalf("expected first frame to parse cleanly, ok=%v err=%v", ok, err)
	}
	if consumed != len(first) {
		t.Fatalf("consumed %d, want only the first frame's %d bytes", consumed, len(first))
	}
	if string(argv[1]) != "a" {
		t.Fatalf("expected first frame's arg, got %q", argv[1])
	}

	argv2, _, ok, err := tryParseFrame(buf[consumed:])
	if err != nil || !ok {
		t.Fatalf("expected second frame to parse cleanly, ok=%v err=%v", ok, err)
	}
	if string(argv2[1]) != "b" {
		t.Fatalf("expected second frame's arg, got %q", argv2[1])
	}
}

func TestTryParseFrameOversizeTotalLen(t *testing.T) {
	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], maxMessageSize+1)

	_, _, _, err := tryParseFrame(hdr[:])
	if err != ErrFraming {
		t.Fatalf("expected ErrFraming for oversize total_len, got %v", err)
	}
}

func TestTryParseFrameArgcTooLarge(t *testing.T) {
	var buf []byte
	var hdr [4]byte

	// body = argc header only
	binary.LittleEndian.PutUint32(hdr[:], maxArgc+1)
	body := append([]byte{}, hdr[:]...)

	binary.LittleEndian.PutUint32(hdr[:], uint32(len(body)))
	buf = append(buf, hdr[:]...)
	buf = append(buf, body...)

	_, _, _, err := tryParseFrame(buf)
	if err != ErrFraming {
		t.Fatalf("expected ErrFraming for argc too large, got %v", err)
	}
}

func TestTryParseFrameTailGarbage(t *testing.T) {
	frame := buildFrame([][]byte{[]byte("get"), []byte("a")})

	// Corrupt total_len to claim one extra trailing byte beyond the
	// well-formed argv encoding, producing a tail-garbage framing fault.
	corrupted := append(append([]byte{}, frame...), 0xFF)
	binary.LittleEndian.PutUint32(corrupted[:4], uint32(len(corrupted)-4))

	_, _, _, err := tryParseFrame(corrupted)
	if err != ErrFraming {
		t.Fatalf("expected ErrFraming for tail garbage, got %v", err)
	}
}

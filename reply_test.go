package beestore

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, r Reply) Reply {
	t.Helper()
	body := encodeReply(r)
	got, n, err := decodeValue(body)
	require.NoError(t, err)
	require.Equal(t, len(body), n)
	return got
}

func TestEncodeReplyRoundTrip(t *testing.T) {
	cases := []Reply{
		ReplyNil(),
		ReplyErr(ErrType, "wrong kind"),
		ReplyStr([]byte("hello")),
		ReplyInt(-42),
		ReplyDbl(3.25),
		ReplyArr([]Reply{ReplyInt(1), ReplyStr([]byte("x")), ReplyNil()}),
	}

	for _, want := range cases {
		got := roundTrip(t, want)
		require.Equal(t, want.Tag, got.Tag)
		switch want.Tag {
		case TagErr:
			require.Equal(t, want.ErrCode, got.ErrCode)
			require.Equal(t, want.ErrMsg, got.ErrMsg)
		case TagStr:
			require.Equal(t, want.Str, got.Str)
		case TagInt:
			require.Equal(t, want.Int, got.Int)
		case TagDbl:
			require.Equal(t, want.Dbl, got.Dbl)
		case TagArr:
			require.Len(t, got.Arr, len(want.Arr))
		}
	}
}

func TestEncodeReplyTooBig(t *testing.T) {
	big := make([]byte, maxMessageSize+1)
	body := encodeReply(ReplyStr(big))

	got, _, err := decodeValue(body)
	require.NoError(t, err)
	require.Equal(t, byte(TagErr), got.Tag)
	require.Equal(t, ErrTooBig, got.ErrCode)
}

func TestAppendFramedReply(t *testing.T) {
	dst := appendFramedReply(nil, ReplyInt(7))

	got, err := ReadReply(bytes.NewReader(dst))
	require.NoError(t, err)
	require.Equal(t, int64(7), got.Int)
}

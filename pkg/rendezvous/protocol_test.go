package rendezvous

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"
)

func TestReadMessage(t *testing.T) {
	tests := []struct {
		name    string
		reader  io.Reader
		limit   int
		want    string
		wantErr bool
	}{
		{name: "single segment", reader: strings.NewReader("TAURI_APP_HERE\n"), limit: 100, want: "TAURI_APP_HERE\n"},
		{name: "split segments", reader: iotest.OneByteReader(strings.NewReader("TAURI_APP_HERE\nleftover")), limit: 100, want: "TAURI_APP_HERE\n"},
		{name: "no delimiter before eof", reader: strings.NewReader("TAURI_APP_HERE"), limit: 100, want: "TAURI_APP_HERE"},
		{name: "limit reached", reader: strings.NewReader(strings.Repeat("a", 150)), limit: 100, want: strings.Repeat("a", 100)},
		{name: "empty eof", reader: strings.NewReader(""), limit: 100, wantErr: true},
		{name: "default limit", reader: strings.NewReader(strings.Repeat("b", 150)), limit: 0, want: strings.Repeat("b", MaxMessageSize)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ReadMessage(tc.reader, tc.limit)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, string(got))
		})
	}
}

func TestReadMessagePartialOnError(t *testing.T) {
	errTimeout := errors.New("i/o timeout")
	r := io.MultiReader(strings.NewReader("PING_TAU"), iotest.ErrReader(errTimeout))

	got, err := ReadMessage(r, MaxMessageSize)
	require.ErrorIs(t, err, errTimeout)
	require.Equal(t, "PING_TAU", string(got))
}

func TestTokenMatching(t *testing.T) {
	require.True(t, IsPing([]byte("PING_TAURI_APP\n")))
	require.True(t, IsPing([]byte("xxPING_TAURI_APPyy")))
	require.False(t, IsPing([]byte("PING_TAURI")))
	require.True(t, IsReply([]byte("TAURI_APP_HERE\n")))
	require.True(t, IsReply(append([]byte{0xff, 0xfe}, []byte("TAURI_APP_HERE")...)))
	require.False(t, IsReply([]byte("HELLO\n")))
	require.False(t, IsReply(nil))
}

func TestMessagesAreNewlineTerminated(t *testing.T) {
	require.True(t, bytes.HasSuffix(pingMessage, []byte("\n")))
	require.Equal(t, "TAURI_APP_HERE\n", string(replyMessage))
	require.LessOrEqual(t, len(pingMessage), MaxMessageSize)
}

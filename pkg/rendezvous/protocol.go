package rendezvous

import (
	"bytes"
	"errors"
	"io"
	"strings"
)

const (
	// DefaultPort is the well-known rendezvous port
	DefaultPort = 54321
	// MaxMessageSize caps how much of a message is read
	MaxMessageSize = 100

	// PingToken identifies a handshake request
	PingToken = "PING_TAURI_APP"
	// ReplyToken identifies a handshake reply
	ReplyToken = "TAURI_APP_HERE"

	delimiter = '\n'
)

var (
	pingMessage  = []byte(PingToken + "\n")
	replyMessage = []byte(ReplyToken + "\n")
)

// ReadMessage reads from r until a newline, limit bytes, EOF or an error.
// Whatever was received is returned; the error is nil when a newline was
// seen, the limit was reached, or the peer closed after sending data.
func ReadMessage(r io.Reader, limit int) ([]byte, error) {
	if limit <= 0 {
		limit = MaxMessageSize
	}
	buf := make([]byte, 0, limit)
	chunk := make([]byte, limit)

	for len(buf) < limit {
		n, err := r.Read(chunk[:limit-len(buf)])
		buf = append(buf, chunk[:n]...)
		if bytes.IndexByte(buf, delimiter) >= 0 {
			return buf, nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) && len(buf) > 0 {
				return buf, nil
			}
			return buf, err
		}
	}
	return buf, nil
}

// containsToken decodes data leniently (invalid UTF-8 is replaced) and
// looks for token
func containsToken(data []byte, token string) bool {
	return strings.Contains(strings.ToValidUTF8(string(data), "�"), token)
}

// IsPing reports whether data carries a handshake request
func IsPing(data []byte) bool {
	return containsToken(data, PingToken)
}

// IsReply reports whether data carries a handshake reply
func IsReply(data []byte) bool {
	return containsToken(data, ReplyToken)
}

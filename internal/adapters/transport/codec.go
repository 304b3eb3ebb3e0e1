package transport

import (
	"bytes"
	"errors"

	"github.com/eleven-am/barrier/internal/domain"
)

const ReadyTag = "READY"

var readyMarker = []byte(" " + ReadyTag)

var ErrMalformedMessage = errors.New("malformed readiness message")

// Encode renders msg as "<sender> READY".
func Encode(msg domain.ReadinessMessage) []byte {
	payload := make([]byte, 0, len(msg.SenderID)+len(readyMarker))
	payload = append(payload, msg.SenderID...)
	return append(payload, readyMarker...)
}

// Decode takes the sender id from everything before the first " READY".
func Decode(payload []byte) (domain.ReadinessMessage, error) {
	pos := bytes.Index(payload, readyMarker)
	if pos <= 0 {
		return domain.ReadinessMessage{}, ErrMalformedMessage
	}
	return domain.ReadinessMessage{SenderID: domain.PeerID(payload[:pos])}, nil
}

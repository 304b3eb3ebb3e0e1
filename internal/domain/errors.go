package domain

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindConfig ErrorKind = iota
	KindEmptyPeerSet
	KindResolution
	KindSocket
	KindSend
	KindReceive
	KindTimeout
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "ConfigError"
	case KindEmptyPeerSet:
		return "EmptyPeerSetError"
	case KindResolution:
		return "ResolutionError"
	case KindSocket:
		return "SocketError"
	case KindSend:
		return "SendError"
	case KindReceive:
		return "ReceiveError"
	case KindTimeout:
		return "TimeoutError"
	default:
		return "UnknownError"
	}
}

// Fatal reports whether an error of this kind ends the barrier. Per-peer and
// per-datagram failures are absorbed by the announcer and listener loops.
func (k ErrorKind) Fatal() bool {
	switch k {
	case KindResolution, KindSend, KindReceive:
		return false
	default:
		return true
	}
}

var (
	ErrConfig       = errors.New("configuration error")
	ErrEmptyPeerSet = errors.New("peer set is empty")
	ErrResolution   = errors.New("peer address resolution failed")
	ErrSocket       = errors.New("socket setup failed")
	ErrSend         = errors.New("send failed")
	ErrReceive      = errors.New("receive failed")
	ErrTimeout      = errors.New("barrier deadline exceeded")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindConfig:
		return ErrConfig
	case KindEmptyPeerSet:
		return ErrEmptyPeerSet
	case KindResolution:
		return ErrResolution
	case KindSocket:
		return ErrSocket
	case KindSend:
		return ErrSend
	case KindReceive:
		return ErrReceive
	case KindTimeout:
		return ErrTimeout
	default:
		return nil
	}
}

type BarrierError struct {
	Kind   ErrorKind
	Op     string
	PeerID PeerID
	Err    error
}

func (e *BarrierError) Error() string {
	msg := e.Kind.sentinel().Error()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.PeerID != "" {
		msg = fmt.Sprintf("%s (peer %q)", msg, e.PeerID)
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *BarrierError) Unwrap() error {
	return e.Err
}

func (e *BarrierError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func newBarrierError(kind ErrorKind, op string, err error) *BarrierError {
	return &BarrierError{Kind: kind, Op: op, Err: err}
}

func NewConfigError(op string, err error) *BarrierError {
	return newBarrierError(KindConfig, op, err)
}

func NewEmptyPeerSetError(op string) *BarrierError {
	return newBarrierError(KindEmptyPeerSet, op, nil)
}

func NewResolutionError(peer PeerID, err error) *BarrierError {
	e := newBarrierError(KindResolution, "resolve", err)
	e.PeerID = peer
	return e
}

func NewSocketError(op string, err error) *BarrierError {
	return newBarrierError(KindSocket, op, err)
}

func NewSendError(peer PeerID, err error) *BarrierError {
	e := newBarrierError(KindSend, "send", err)
	e.PeerID = peer
	return e
}

func NewReceiveError(err error) *BarrierError {
	return newBarrierError(KindReceive, "receive", err)
}

func NewTimeoutError(op string, err error) *BarrierError {
	return newBarrierError(KindTimeout, op, err)
}

// KindOf returns the kind of the first BarrierError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var barrierErr *BarrierError
	if errors.As(err, &barrierErr) {
		return barrierErr.Kind, true
	}
	return 0, false
}

func IsConfig(err error) bool {
	return errors.Is(err, ErrConfig)
}

func IsEmptyPeerSet(err error) bool {
	return errors.Is(err, ErrEmptyPeerSet)
}

func IsResolution(err error) bool {
	return errors.Is(err, ErrResolution)
}

func IsSocket(err error) bool {
	return errors.Is(err, ErrSocket)
}

func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

package core

import "errors"

// Frame is an encoded wire event ready for transport.
type Frame []byte

// ConnID identifies one live transport session. It is minted by the
// adapter on upgrade and dies with the connection; it is unrelated to
// the user id a client later announces.
type ConnID string

var ErrBackpressure = errors.New("backpressure")

// ClientConn is a transport endpoint (WebSocket).
// Owned by the adapter; the adapter must Close() it.
// TrySend never blocks: a full send buffer returns ErrBackpressure and
// the frame is dropped, which is the delivery guarantee on offer.
type ClientConn interface {
	ID() ConnID
	TrySend(Frame) error
	Close()
}

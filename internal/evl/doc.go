// Package evl owns the panel session.
//
// Ownership boundary:
// - socket lifecycle and stream-to-packet framing (Connection)
// - login handshake and event re-emission (Client)
//
// One read goroutine per Connection delivers every Data and Disconnected
// callback, in registration order, and runs each to completion before the
// next chunk is read. Nothing here reconnects or retries.
package evl

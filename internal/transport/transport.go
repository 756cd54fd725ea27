// Package transport is the byte-stream boundary between the display driver
// and the panel bus. Command writes are synchronous; frame transfers are
// asynchronous and report completion through a callback, mirroring a
// DMA-with-interrupt bus peripheral.
package transport

// Transport is a write-only channel to the display controller.
//
// WriteCommand blocks until the command stream has been accepted by the
// bus. TransferBlock returns immediately and invokes done exactly once from
// the transport's own goroutine; callers must not start a second transfer
// before the previous one completed.
type Transport interface {
	WriteCommand(cmds []byte) error
	TransferBlock(data []byte, done func(ok bool))
	Close() error
}

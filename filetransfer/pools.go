/* SPDX-License-Identifier: MIT */

// Package filetransfer implements the sliding-window file-transfer
// subsystem (§4.7): a receiver state machine that writes chunks to a temp
// file and verifies them on completion, and a sender state machine that
// streams a file under a bounded acknowledgment window. Both run off the
// coordination thread, on the router's dedicated file queue or a
// per-transfer worker goroutine.
package filetransfer

import "sync"

// chunkBufferPool reuses maximum-size chunk buffers across transfers, the
// same pattern golang.zx2c4.com/wireguard/device uses for its message
// buffers (device/pools.go): a sync.Pool of MaxChunkSize byte slices,
// avoiding a GC-visible allocation on every chunk.
var chunkBufferPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, MaxChunkSize)
		return &buf
	},
}

func getChunkBuffer() *[]byte {
	return chunkBufferPool.Get().(*[]byte)
}

func putChunkBuffer(buf *[]byte) {
	chunkBufferPool.Put(buf)
}

// pool.go: Buffer pooling for cryptographic scratch space.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	"sync"
)

// streamChunkSize is the buffer size used by the stream adapter when
// piping data through a cipher transform. It balances memory footprint
// against syscall overhead.
const streamChunkSize = 64 * 1024

var (
	// smallBufferPool serves IV-sized and digest-sized scratch buffers.
	smallBufferPool = sync.Pool{
		New: func() interface{} {
			buf := make([]byte, 64)
			return &buf
		},
	}

	// chunkBufferPool serves the stream adapter's per-stream work buffers.
	chunkBufferPool = sync.Pool{
		New: func() interface{} {
			buf := make([]byte, streamChunkSize)
			return &buf
		},
	}
)

// getSmallBuffer returns a scratch buffer of the requested size, pooled
// when the size allows it. Contents are zeroed on return to the pool, not
// on retrieval.
func getSmallBuffer(size int) *[]byte {
	if size > 64 {
		buf := make([]byte, size)
		return &buf
	}
	buf := smallBufferPool.Get().(*[]byte)
	*buf = (*buf)[:size]
	return buf
}

// putSmallBuffer zeroes and returns a scratch buffer to the pool.
// Buffers that did not come from the pool are dropped for the GC.
func putSmallBuffer(buf *[]byte) {
	if buf == nil {
		return
	}
	clearBuffer((*buf)[:cap(*buf)])
	if cap(*buf) == 64 {
		smallBufferPool.Put(buf)
	}
}

// getChunkBuffer returns a streamChunkSize work buffer for stream piping.
func getChunkBuffer() *[]byte {
	buf := chunkBufferPool.Get().(*[]byte)
	*buf = (*buf)[:streamChunkSize]
	return buf
}

// putChunkBuffer zeroes a stream work buffer and returns it to the pool.
// Zeroing matters here: the buffer held plaintext during the stream.
func putChunkBuffer(buf *[]byte) {
	if buf == nil {
		return
	}
	clearBuffer((*buf)[:cap(*buf)])
	chunkBufferPool.Put(buf)
}

// clearBuffer zeroes a buffer, unrolled for cache-line throughput on the
// large stream buffers.
func clearBuffer(buf []byte) {
	if len(buf) <= 64 {
		for i := range buf {
			buf[i] = 0
		}
		return
	}

	i := 0
	for i < len(buf)-7 {
		buf[i] = 0
		buf[i+1] = 0
		buf[i+2] = 0
		buf[i+3] = 0
		buf[i+4] = 0
		buf[i+5] = 0
		buf[i+6] = 0
		buf[i+7] = 0
		i += 8
	}
	for i < len(buf) {
		buf[i] = 0
		i++
	}
}

/* SPDX-License-Identifier: MIT */

package filetransfer

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/btree"
	"github.com/google/uuid"

	"github.com/pairbridge/bridged/bridge"
)

type inflightChunk struct {
	attempts int
	lastSent time.Time
}

// outboundTransfer is the sender-side sliding-window state machine of
// §4.7.3. acked holds only indices that have not yet advanced base past
// them — a btree.BTreeG[int] rather than a map, so "walk from 0 and
// advance base past the contiguous run" is an ascending-order iteration
// instead of a linear scan of a map with no defined order.
type outboundTransfer struct {
	id        string
	path      string
	name      string
	size      int64
	chunkSize int
	checksum  string

	totalChunks int

	mu        sync.Mutex
	file      *os.File
	base      int
	nextIndex int
	acked     *btree.BTreeG[int]
	inflight  map[int]*inflightChunk
	state     State

	cancel chan struct{}
}

func lessInt(a, b int) bool { return a < b }

// StartSend begins sending path to the peer; it hashes the file
// streamingly, opens the init handshake, and starts the sliding-window
// loop in a background goroutine. The returned id is the transfer id the
// operator uses to track or cancel it.
func (m *Manager) StartSend(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("filetransfer: stat %s: %w", path, err)
	}

	sum, err := hashFile(path)
	if err != nil {
		return "", fmt.Errorf("filetransfer: hash %s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("filetransfer: open %s: %w", path, err)
	}

	id := uuid.NewString()
	size := info.Size()
	totalChunks := int((size + MaxChunkSize - 1) / MaxChunkSize)
	if size == 0 {
		totalChunks = 0
	}

	out := &outboundTransfer{
		id:          id,
		path:        path,
		name:        filepath.Base(path),
		size:        size,
		chunkSize:   MaxChunkSize,
		checksum:    sum,
		totalChunks: totalChunks,
		file:        f,
		acked:       btree.NewG(32, lessInt),
		inflight:    make(map[int]*inflightChunk),
		state:       StateActive,
		cancel:      make(chan struct{}),
	}

	m.mu.Lock()
	m.outbound[id] = out
	m.mu.Unlock()

	if err := m.tx.Send(bridge.KindFileTransferInit, struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Size      int64  `json:"size"`
		Mime      string `json:"mime"`
		ChunkSize int    `json:"chunkSize"`
		Checksum  string `json:"checksum"`
	}{id, out.name, size, "", MaxChunkSize, sum}); err != nil {
		f.Close()
		m.mu.Lock()
		delete(m.outbound, id)
		m.mu.Unlock()
		return "", err
	}

	go m.sendLoop(out)
	return id, nil
}

func (m *Manager) sendLoop(out *outboundTransfer) {
	ticker := time.NewTicker(SendLoopTick)
	defer ticker.Stop()
	defer out.file.Close()

	for {
		select {
		case <-out.cancel:
			return
		case <-ticker.C:
		}

		out.mu.Lock()
		if out.state != StateActive {
			out.mu.Unlock()
			return
		}

		for {
			min, ok := out.acked.Min()
			if !ok || min != out.base {
				break
			}
			out.acked.Delete(out.base)
			delete(out.inflight, out.base)
			out.base++
		}

		progress := int64(out.base) * int64(out.chunkSize)
		if progress > out.size {
			progress = out.size
		}
		done := out.base >= out.totalChunks
		out.mu.Unlock()

		m.ui.PublishTransferProgress(out.id, progress, out.size)
		if done {
			m.finishOutbound(out)
			return
		}

		if failed := m.fillWindowAndRetry(out); failed {
			return
		}
	}
}

// fillWindowAndRetry sends new chunks up to the window bound and resends
// any chunk whose ack-wait has expired, failing the transfer if a chunk
// exceeds its retry budget. It returns true if the transfer failed.
func (m *Manager) fillWindowAndRetry(out *outboundTransfer) bool {
	out.mu.Lock()
	defer out.mu.Unlock()

	for out.nextIndex-out.base < Window && out.nextIndex < out.totalChunks {
		if err := m.sendChunk(out, out.nextIndex); err != nil {
			m.log.Errorf("filetransfer: send chunk %s[%d]: %v", out.id, out.nextIndex, err)
			m.failOutboundLocked(out, err)
			return true
		}
		out.inflight[out.nextIndex] = &inflightChunk{attempts: 1, lastSent: time.Now()}
		out.nextIndex++
	}

	now := time.Now()
	for idx, ic := range out.inflight {
		if now.Sub(ic.lastSent) < AckWait || out.acked.Has(idx) {
			continue
		}
		if ic.attempts >= MaxAttempts {
			m.failOutboundLocked(out, fmt.Errorf("chunk %d exceeded %d attempts", idx, MaxAttempts))
			return true
		}
		if err := m.sendChunk(out, idx); err != nil {
			m.failOutboundLocked(out, err)
			return true
		}
		ic.attempts++
		ic.lastSent = now
	}
	return false
}

func (m *Manager) sendChunk(out *outboundTransfer, index int) error {
	buf := getChunkBuffer()
	defer putChunkBuffer(buf)

	offset := int64(index) * int64(out.chunkSize)
	n, err := out.file.ReadAt((*buf)[:out.chunkSize], offset)
	if err != nil && n == 0 {
		return err
	}
	encoded := base64.StdEncoding.EncodeToString((*buf)[:n])
	return m.tx.Send(bridge.KindFileChunk, struct {
		ID    string `json:"id"`
		Index int    `json:"index"`
		Chunk string `json:"chunk"`
	}{out.id, index, encoded})
}

func (m *Manager) finishOutbound(out *outboundTransfer) {
	out.mu.Lock()
	out.state = StateVerifying
	out.mu.Unlock()

	m.tx.Send(bridge.KindFileTransferComplete, struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Size     int64  `json:"size"`
		Checksum string `json:"checksum"`
	}{out.id, out.name, out.size, out.checksum})
}

func (m *Manager) failOutboundLocked(out *outboundTransfer, cause error) {
	out.state = StateFailed
	m.log.Errorf("filetransfer: outbound %s failed: %v", out.id, cause)
	m.ui.PublishTransferFailed(out.id, cause.Error())
	m.mu.Lock()
	delete(m.outbound, out.id)
	m.mu.Unlock()
}

// ChunkAck handles an inbound ack for a transfer we are sending.
func (m *Manager) ChunkAck(id string, index int) error {
	m.mu.Lock()
	out := m.outbound[id]
	m.mu.Unlock()
	if out == nil {
		return nil
	}
	out.mu.Lock()
	if out.state == StateActive && index >= out.base {
		out.acked.ReplaceOrInsert(index)
	}
	out.mu.Unlock()
	return nil
}

// Verified handles the receiver's post-transfer checksum verdict for a
// transfer we sent.
func (m *Manager) Verified(id string, verified bool) error {
	m.mu.Lock()
	out, ok := m.outbound[id]
	if ok {
		delete(m.outbound, id)
	}
	m.mu.Unlock()
	if !ok {
		return nil
	}
	if !verified {
		m.log.Errorf("filetransfer: peer reports checksum mismatch for %s", id)
	} else {
		m.log.Infof("filetransfer: %s verified by peer", id)
	}
	return nil
}

// cancelOutbound is idempotent (§4.7.4).
func (m *Manager) cancelOutbound(id string) bool {
	m.mu.Lock()
	out, ok := m.outbound[id]
	if ok {
		delete(m.outbound, id)
	}
	m.mu.Unlock()
	if !ok {
		return false
	}

	out.mu.Lock()
	if out.state != StateActive && out.state != StateVerifying {
		out.mu.Unlock()
		return true
	}
	out.state = StateCancelled
	out.mu.Unlock()

	close(out.cancel)
	m.ui.PublishTransferFailed(id, "cancelled")
	return true
}

/* SPDX-License-Identifier: MIT */

package filetransfer

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/pairbridge/bridged/bridge"
)

// inboundTransfer is the receiver-side state machine of §4.7.2: the peer
// is the sender, we write chunks to a temp file and verify on Complete.
type inboundTransfer struct {
	id          string
	name        string
	size        int64
	chunkSize   int
	checksum    string
	isClipboard bool

	mu               sync.Mutex
	file             *os.File
	tempPath         string
	bytesTransferred int64
	state            State
}

func (m *Manager) newInbound(id, name string, size int64, chunkSize int, checksum string, isClipboard bool) (*inboundTransfer, error) {
	if err := os.MkdirAll(m.tempDir, 0o755); err != nil {
		return nil, fmt.Errorf("filetransfer: create temp dir: %w", err)
	}
	f, err := os.CreateTemp(m.tempDir, "xfer-*.part")
	if err != nil {
		return nil, fmt.Errorf("filetransfer: create temp file: %w", err)
	}
	return &inboundTransfer{
		id:        id,
		name:      name,
		size:      size,
		chunkSize: chunkSize,
		checksum:  checksum,
		isClipboard: isClipboard,
		file:      f,
		tempPath:  f.Name(),
		state:     StateActive,
	}, nil
}

// Init handles an inbound fileTransferInit: the peer wants to send us a
// file (§4.7.1).
func (m *Manager) Init(id, name string, size int64, mime string, chunkSize int, checksum string, isClipboard bool) error {
	if chunkSize <= 0 {
		chunkSize = MaxChunkSize
	}

	in, err := m.newInbound(id, name, size, chunkSize, checksum, isClipboard)
	if err != nil {
		m.log.Errorf("filetransfer: init %s failed: %v", id, err)
		return err
	}

	m.mu.Lock()
	m.inbound[id] = in
	m.mu.Unlock()
	m.log.Infof("filetransfer: receiving %q (%d bytes) as %s", name, size, id)
	return nil
}

// Chunk writes one chunk at its declared offset and immediately acks it
// (§4.7.2: "acks are receipt-acks, not durability-acks").
func (m *Manager) Chunk(id string, index int, chunkB64 string) error {
	m.mu.Lock()
	in := m.inbound[id]
	m.mu.Unlock()
	if in == nil {
		return nil // unknown/already-finished transfer: drop silently
	}

	in.mu.Lock()
	if in.state != StateActive {
		in.mu.Unlock()
		return nil
	}
	raw, err := base64.StdEncoding.DecodeString(chunkB64)
	if err != nil {
		in.mu.Unlock()
		return fmt.Errorf("filetransfer: bad chunk encoding for %s: %w", id, err)
	}

	offset := int64(index) * int64(in.chunkSize)
	if _, err := in.file.WriteAt(raw, offset); err != nil {
		in.mu.Unlock()
		m.log.Errorf("filetransfer: write chunk %s[%d] failed: %v", id, index, err)
		return err
	}
	if end := offset + int64(len(raw)); end > in.bytesTransferred {
		in.bytesTransferred = end
	}
	progress := in.bytesTransferred
	total := in.size
	in.mu.Unlock()

	m.ui.PublishTransferProgress(id, progress, total)
	return m.tx.Send(bridge.KindFileChunkAck, struct {
		ID    string `json:"id"`
		Index int    `json:"index"`
	}{id, index})
}

// Complete handles the peer's EOF announcement: verify size and checksum,
// move into downloads, and report the verdict (§4.7.2).
func (m *Manager) Complete(id, name string, size int64, checksum string) error {
	m.mu.Lock()
	in := m.inbound[id]
	m.mu.Unlock()
	if in == nil {
		return nil
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	if in.state != StateActive {
		return nil
	}

	if err := in.file.Close(); err != nil {
		m.failInbound(in, fmt.Errorf("close: %w", err))
		return err
	}

	stat, err := os.Stat(in.tempPath)
	if err != nil || stat.Size() != size {
		m.failInbound(in, fmt.Errorf("size mismatch: got %d want %d", statSize(stat), size))
		return nil
	}

	if checksum != "" {
		switch len(checksum) {
		case 64: // sha256 hex
			sum, err := hashFile(in.tempPath)
			if err != nil {
				m.failInbound(in, err)
				return err
			}
			if sum != checksum {
				m.failInbound(in, fmt.Errorf("checksum mismatch: got %s want %s", sum, checksum))
				return m.tx.Send(bridge.KindTransferVerified, struct {
					ID       string `json:"id"`
					Verified bool   `json:"verified"`
				}{id, false})
			}
		case 32:
			// Legacy MD5 checksum: a warning, not a failure (§9 open
			// question resolution).
			m.log.Infof("filetransfer: %s carries a legacy 32-hex checksum, treating as informational only", id)
		default:
			m.log.Infof("filetransfer: %s carries a malformed checksum %q, ignoring", id, checksum)
		}
	}

	dest := filepath.Join(m.downloadsDir, filepath.Base(name))
	if err := os.MkdirAll(m.downloadsDir, 0o755); err != nil {
		m.failInbound(in, err)
		return err
	}
	if err := os.Rename(in.tempPath, dest); err != nil {
		m.failInbound(in, err)
		return err
	}

	in.state = StateDone
	m.notify.PostTransferComplete(name, dest)

	m.mu.Lock()
	delete(m.inbound, id)
	m.mu.Unlock()

	return m.tx.Send(bridge.KindTransferVerified, struct {
		ID       string `json:"id"`
		Verified bool   `json:"verified"`
	}{id, true})
}

func (m *Manager) failInbound(in *inboundTransfer, cause error) {
	in.state = StateFailed
	os.Remove(in.tempPath)
	m.log.Errorf("filetransfer: %s failed: %v", in.id, cause)
	m.ui.PublishTransferFailed(in.id, cause.Error())
	m.mu.Lock()
	delete(m.inbound, in.id)
	m.mu.Unlock()
}

func statSize(fi os.FileInfo) int64 {
	if fi == nil {
		return -1
	}
	return fi.Size()
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// cancelInbound is idempotent (§4.7.4): a second Cancel for an
// already-cancelled/finished id is a no-op.
func (m *Manager) cancelInbound(id string) bool {
	m.mu.Lock()
	in, ok := m.inbound[id]
	if ok {
		delete(m.inbound, id)
	}
	m.mu.Unlock()
	if !ok {
		return false
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	if in.state != StateActive {
		return true
	}
	in.state = StateCancelled
	in.file.Close()
	os.Remove(in.tempPath)
	m.ui.PublishTransferFailed(id, "cancelled")
	return true
}

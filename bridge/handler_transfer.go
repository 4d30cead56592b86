/* SPDX-License-Identifier: MIT */

package bridge

import "encoding/json"

// TransferCoordinator is the narrow surface the router's dedicated file
// queue (§4.5 "Dispatch discipline") needs from the file-transfer
// subsystem. Bridge only decodes frames and forwards them here; the state
// machines themselves (receiver, sender, sliding window) live in the
// filetransfer package, out of this package's coordination thread.
type TransferCoordinator interface {
	Init(id, name string, size int64, mime string, chunkSize int, checksum string, isClipboard bool) error
	Chunk(id string, index int, chunkB64 string) error
	ChunkAck(id string, index int) error
	Complete(id, name string, size int64, checksum string) error
	Verified(id string, verified bool) error
	Cancel(id string) error
}

type noopTransfers struct{}

func (noopTransfers) Init(string, string, int64, string, int, string, bool) error { return nil }
func (noopTransfers) Chunk(string, int, string) error                             { return nil }
func (noopTransfers) ChunkAck(string, int) error                                  { return nil }
func (noopTransfers) Complete(string, string, int64, string) error                { return nil }
func (noopTransfers) Verified(string, bool) error                                 { return nil }
func (noopTransfers) Cancel(string) error                                         { return nil }

type fileTransferInitIn struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	Mime        string `json:"mime"`
	ChunkSize   int    `json:"chunkSize"`
	Checksum    string `json:"checksum,omitempty"`
	IsClipboard bool   `json:"isClipboard,omitempty"`
}

func (b *Bridge) handleFileTransferInit(s *Session, data json.RawMessage) error {
	var in fileTransferInitIn
	if err := json.Unmarshal(data, &in); err != nil {
		return ErrBadPayload
	}
	if in.ID == "" || in.Name == "" {
		return ErrMissingFields
	}
	if in.ChunkSize == 0 {
		in.ChunkSize = DefaultChunkSize
	}
	return b.Transfers.Init(in.ID, in.Name, in.Size, in.Mime, in.ChunkSize, in.Checksum, in.IsClipboard)
}

type fileChunkIn struct {
	ID    string `json:"id"`
	Index int    `json:"index"`
	Chunk string `json:"chunk"`
}

func (b *Bridge) handleFileChunk(s *Session, data json.RawMessage) error {
	var in fileChunkIn
	if err := json.Unmarshal(data, &in); err != nil {
		return ErrBadPayload
	}
	return b.Transfers.Chunk(in.ID, in.Index, in.Chunk)
}

type fileChunkAckIn struct {
	ID    string `json:"id"`
	Index int    `json:"index"`
}

func (b *Bridge) handleFileChunkAck(s *Session, data json.RawMessage) error {
	var in fileChunkAckIn
	if err := json.Unmarshal(data, &in); err != nil {
		return ErrBadPayload
	}
	return b.Transfers.ChunkAck(in.ID, in.Index)
}

type fileTransferCompleteIn struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	Checksum string `json:"checksum,omitempty"`
}

func (b *Bridge) handleFileTransferComplete(s *Session, data json.RawMessage) error {
	var in fileTransferCompleteIn
	if err := json.Unmarshal(data, &in); err != nil {
		return ErrBadPayload
	}
	return b.Transfers.Complete(in.ID, in.Name, in.Size, in.Checksum)
}

type transferVerifiedIn struct {
	ID       string `json:"id"`
	Verified bool   `json:"verified"`
}

func (b *Bridge) handleTransferVerified(s *Session, data json.RawMessage) error {
	var in transferVerifiedIn
	if err := json.Unmarshal(data, &in); err != nil {
		return ErrBadPayload
	}
	return b.Transfers.Verified(in.ID, in.Verified)
}

type fileTransferCancelIn struct {
	ID string `json:"id"`
}

func (b *Bridge) handleFileTransferCancel(s *Session, data json.RawMessage) error {
	var in fileTransferCancelIn
	if err := json.Unmarshal(data, &in); err != nil {
		return ErrBadPayload
	}
	return b.Transfers.Cancel(in.ID)
}

/* SPDX-License-Identifier: MIT */

package bridge

import (
	"crypto/aes"
	"crypto/cipher"
	crand "crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/klauspost/cpuid/v2"
	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the width of the persisted symmetric secret: 256 bits.
const KeySize = 32

const (
	nonceSize = 12 // 96-bit nonce
	tagSize   = 16 // 128-bit authentication tag
)

var (
	ErrCiphertextShort = errors.New("bridge: sealed frame shorter than nonce+tag")
	ErrSealFailed      = errors.New("bridge: seal failed")
	ErrOpenFailed      = errors.New("bridge: open failed (bad key or corrupt frame)")
)

// aead is satisfied by both crypto/cipher's AES-GCM and
// golang.org/x/crypto/chacha20poly1305's constructor.
type aead interface {
	Seal(dst, nonce, plaintext, additionalData []byte) []byte
	Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
	NonceSize() int
	Overhead() int
}

// CryptoBox seals and opens individual messages under a single persisted
// 256-bit key, following §4.1: fresh random nonce per message, no
// additional data, nonce||ciphertext||tag base64-encoded for the wire.
//
// The backend cipher is chosen once at construction: AES-256-GCM when the
// host CPU has AES-NI (cpuid-detected), XChaCha... no, ChaCha20-Poly1305
// otherwise. Both satisfy the 96-bit-nonce/128-bit-tag contract the wire
// format commits to, so swapping backends is invisible on the wire.
type CryptoBox struct {
	mu     sync.RWMutex
	aead   aead
	hasKey bool
	log    Logger
}

func NewCryptoBox(log Logger) *CryptoBox {
	return &CryptoBox{log: log}
}

func backendName() string {
	if cpuid.CPU.Supports(cpuid.AESNI) {
		return "aes-256-gcm"
	}
	return "chacha20poly1305"
}

func newAEAD(key [KeySize]byte) (aead, error) {
	if cpuid.CPU.Supports(cpuid.AESNI) {
		block, err := aes.NewCipher(key[:])
		if err != nil {
			return nil, err
		}
		return cipher.NewGCM(block)
	}
	return chacha20poly1305.New(key[:])
}

// SetKey installs the active key, replacing any previous one. Reset (§4.1)
// is implemented by the caller calling SetKey with a freshly generated key.
func (c *CryptoBox) SetKey(key [KeySize]byte) error {
	a, err := newAEAD(key)
	if err != nil {
		return fmt.Errorf("bridge: initializing %s: %w", backendName(), err)
	}
	c.mu.Lock()
	c.aead = a
	c.hasKey = true
	c.mu.Unlock()
	if c.log != nil {
		c.log.Infof("crypto box keyed, backend=%s", backendName())
	}
	return nil
}

func (c *CryptoBox) HasKey() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hasKey
}

// Seal encodes plaintext as UTF-8 (it already is, being a Go string),
// seals it under a fresh random nonce, and returns the base64 encoding of
// nonce||ciphertext||tag. If no key is configured, the plaintext is
// returned unmodified per §6.1 ("If no key is configured...").
func (c *CryptoBox) Seal(plaintext string) (string, error) {
	c.mu.RLock()
	a, has := c.aead, c.hasKey
	c.mu.RUnlock()
	if !has {
		return plaintext, nil
	}

	nonce := make([]byte, nonceSize)
	if _, err := crand.Read(nonce); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSealFailed, err)
	}

	buf := make([]byte, 0, nonceSize+len(plaintext)+tagSize)
	buf = append(buf, nonce...)
	buf = a.Seal(buf, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(buf), nil
}

// Open reverses Seal. If no key is configured, body is returned verbatim.
func (c *CryptoBox) Open(body string) (string, error) {
	c.mu.RLock()
	a, has := c.aead, c.hasKey
	c.mu.RUnlock()
	if !has {
		return body, nil
	}

	raw, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrOpenFailed, err)
	}
	if len(raw) < nonceSize+tagSize {
		return "", ErrCiphertextShort
	}

	nonce, ct := raw[:nonceSize], raw[nonceSize:]
	pt, err := a.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", ErrOpenFailed
	}
	return string(pt), nil
}

// LoadOrCreateKey reads a 32-byte key from path, generating and persisting
// a new one (via crypto/rand) if the file is absent, per §4.1's "created
// once on first start if absent; loaded on every subsequent start".
func LoadOrCreateKey(path string) ([KeySize]byte, error) {
	var key [KeySize]byte

	raw, err := os.ReadFile(path)
	if err == nil {
		if len(raw) != KeySize {
			return key, fmt.Errorf("bridge: key file %s has wrong size %d", path, len(raw))
		}
		copy(key[:], raw)
		return key, nil
	}
	if !os.IsNotExist(err) {
		return key, err
	}

	if _, err := crand.Read(key[:]); err != nil {
		return key, fmt.Errorf("bridge: generating key: %w", err)
	}
	if err := writeKeyFile(path, key); err != nil {
		return key, err
	}
	return key, nil
}

// ResetKey generates and persists a brand new key, invalidating any
// pre-existing pairing (peers must re-pair, per §4.1).
func ResetKey(path string) ([KeySize]byte, error) {
	var key [KeySize]byte
	if _, err := crand.Read(key[:]); err != nil {
		return key, fmt.Errorf("bridge: generating key: %w", err)
	}
	return key, writeKeyFile(path, key)
}

func writeKeyFile(path string, key [KeySize]byte) error {
	return os.WriteFile(path, key[:], 0600)
}

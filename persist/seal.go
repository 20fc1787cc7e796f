package persist

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/MrEthical07/goSession/session"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	minSealMemoryKB    uint32 = 8 * 1024
	minSealTime        uint32 = 1
	minSealParallelism uint8  = 1
	maxSealMemoryKB    uint32 = 1024 * 1024
	maxSealTime        uint32 = 16
	maxSealParallelism uint8  = 64
	sealSaltLength            = 16
	minPassphraseBytes        = 8
)

var sealMagic = []byte("GSS1")

// headerLength is magic, memory, time, parallelism, salt, and nonce.
const headerLength = 4 + 4 + 4 + 1 + sealSaltLength + chacha20poly1305.NonceSizeX

// ErrSealOpen is returned when a sealed slot cannot be authenticated: the
// passphrase is wrong or the bytes were altered. It also matches
// session.ErrCorruptRecord.
var ErrSealOpen = errors.New("sealed session cannot be opened")

// SealConfig holds the Argon2id parameters used to derive the file key.
type SealConfig struct {
	Passphrase  string
	Memory      uint32
	Time        uint32
	Parallelism uint8
}

// DefaultSealConfig returns interactive-strength parameters.
func DefaultSealConfig(passphrase string) SealConfig {
	return SealConfig{
		Passphrase:  passphrase,
		Memory:      64 * 1024,
		Time:        1,
		Parallelism: 4,
	}
}

// Sealer encrypts slot bytes with XChaCha20-Poly1305 under a key derived
// from a passphrase. The derivation parameters and salt travel in the header,
// so files stay readable after the defaults change.
type Sealer struct {
	cfg SealConfig

	mu   sync.Mutex
	salt []byte
	key  []byte
}

func NewSealer(cfg SealConfig) (*Sealer, error) {
	if len(cfg.Passphrase) < minPassphraseBytes {
		return nil, fmt.Errorf("seal passphrase must be at least %d bytes", minPassphraseBytes)
	}
	if cfg.Memory < minSealMemoryKB || cfg.Memory > maxSealMemoryKB {
		return nil, errors.New("seal memory must be between 8192 KB and 1 GiB")
	}
	if cfg.Time < minSealTime || cfg.Time > maxSealTime {
		return nil, errors.New("seal time must be between 1 and 16")
	}
	if cfg.Parallelism < minSealParallelism || cfg.Parallelism > maxSealParallelism {
		return nil, errors.New("seal parallelism must be between 1 and 64")
	}
	return &Sealer{cfg: cfg}, nil
}

// Seal encrypts plaintext. The derived key is reused across calls; each call
// uses a fresh nonce.
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	salt, key, err := s.currentKey()
	if err != nil {
		return nil, err
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	header := make([]byte, 0, headerLength)
	header = append(header, sealMagic...)
	header = binary.BigEndian.AppendUint32(header, s.cfg.Memory)
	header = binary.BigEndian.AppendUint32(header, s.cfg.Time)
	header = append(header, s.cfg.Parallelism)
	header = append(header, salt...)
	header = append(header, nonce...)

	return aead.Seal(header, nonce, plaintext, header), nil
}

// Open authenticates and decrypts data produced by Seal.
func (s *Sealer) Open(data []byte) ([]byte, error) {
	if len(data) < headerLength || !bytes.Equal(data[:len(sealMagic)], sealMagic) {
		return nil, fmt.Errorf("%w: %w: bad header", session.ErrCorruptRecord, ErrSealOpen)
	}

	header := data[:headerLength]
	off := len(sealMagic)
	memory := binary.BigEndian.Uint32(header[off:])
	off += 4
	timeCost := binary.BigEndian.Uint32(header[off:])
	off += 4
	parallelism := header[off]
	off++
	salt := header[off : off+sealSaltLength]
	off += sealSaltLength
	nonce := header[off : off+chacha20poly1305.NonceSizeX]

	// The header is authenticated only after derivation, so its costs are
	// bounded before they reach argon2.
	if !sealParamsInRange(memory, timeCost, parallelism) {
		return nil, fmt.Errorf("%w: %w: bad parameters", session.ErrCorruptRecord, ErrSealOpen)
	}

	key := s.keyFor(salt, memory, timeCost, parallelism)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(nil, nonce, data[headerLength:], header)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", session.ErrCorruptRecord, ErrSealOpen)
	}

	s.adopt(salt, key, memory, timeCost, parallelism)
	return plaintext, nil
}

func sealParamsInRange(memory, timeCost uint32, parallelism uint8) bool {
	return memory >= minSealMemoryKB && memory <= maxSealMemoryKB &&
		timeCost >= minSealTime && timeCost <= maxSealTime &&
		parallelism >= minSealParallelism && parallelism <= maxSealParallelism
}

func (s *Sealer) currentKey() ([]byte, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key != nil {
		return s.salt, s.key, nil
	}

	salt := make([]byte, sealSaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, nil, err
	}
	s.salt = salt
	s.key = s.derive(salt, s.cfg.Memory, s.cfg.Time, s.cfg.Parallelism)
	return s.salt, s.key, nil
}

func (s *Sealer) keyFor(salt []byte, memory, timeCost uint32, parallelism uint8) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key != nil && bytes.Equal(s.salt, salt) &&
		memory == s.cfg.Memory && timeCost == s.cfg.Time && parallelism == s.cfg.Parallelism {
		return s.key
	}
	return s.derive(salt, memory, timeCost, parallelism)
}

// adopt caches the key of a successfully opened file when it was derived with
// the configured parameters, so the next Seal skips a derivation.
func (s *Sealer) adopt(salt, key []byte, memory, timeCost uint32, parallelism uint8) {
	if memory != s.cfg.Memory || timeCost != s.cfg.Time || parallelism != s.cfg.Parallelism {
		return
	}
	s.mu.Lock()
	s.salt = append([]byte(nil), salt...)
	s.key = key
	s.mu.Unlock()
}

func (s *Sealer) derive(salt []byte, memory, timeCost uint32, parallelism uint8) []byte {
	return argon2.IDKey([]byte(s.cfg.Passphrase), salt, timeCost, memory, parallelism, chacha20poly1305.KeySize)
}

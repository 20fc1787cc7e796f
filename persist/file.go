package persist

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/MrEthical07/goSession/session"
	"github.com/facebookgo/atomicfile"
)

// FileConfig locates the slot file.
type FileConfig struct {
	Path string
	// Mode defaults to 0600.
	Mode fs.FileMode
	// Sealer encrypts the file when set.
	Sealer *Sealer
}

// File stores the slot in one file, replaced atomically on every save so a
// crash never leaves a torn record behind.
type File struct {
	path   string
	mode   fs.FileMode
	sealer *Sealer
}

func NewFile(cfg FileConfig) (*File, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("session file path must not be empty")
	}
	mode := cfg.Mode
	if mode == 0 {
		mode = 0o600
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}
	return &File{path: path, mode: mode, sealer: cfg.Sealer}, nil
}

// Path returns the slot file location.
func (f *File) Path() string {
	return f.path
}

func (f *File) Load(context.Context) (session.Record, bool, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return session.Record{}, false, nil
		}
		return session.Record{}, false, fmt.Errorf("read session file: %w", err)
	}

	if f.sealer != nil {
		data, err = f.sealer.Open(data)
		if err != nil {
			return session.Record{}, false, err
		}
	}
	return decodeSlot(data)
}

func (f *File) Save(_ context.Context, rec session.Record) error {
	data, err := session.Encode(rec)
	if err != nil {
		return err
	}
	if f.sealer != nil {
		if data, err = f.sealer.Seal(data); err != nil {
			return fmt.Errorf("seal session: %w", err)
		}
	}

	af, err := atomicfile.New(f.path, f.mode)
	if err != nil {
		return fmt.Errorf("open session file: %w", err)
	}
	if _, err := af.Write(data); err != nil {
		_ = af.Abort()
		return fmt.Errorf("write session file: %w", err)
	}
	if err := af.Close(); err != nil {
		return fmt.Errorf("commit session file: %w", err)
	}
	return nil
}

// Clear removes the file. A missing file is already clear.
func (f *File) Clear(context.Context) error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

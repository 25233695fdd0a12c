// Package store keeps the latest table snapshot per editing job on disk.
// Every write replaces the whole snapshot; readers always see a complete one.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/MalithGihan/sankey-service/internal/settings"
	"github.com/MalithGihan/sankey-service/pkg/types"
)

const (
	snapshotFile = "snapshot.msgpack.zst"
	figureFile   = "figure.json"
)

var ErrJobNotFound = errors.New("job not found")

// Snapshot is one full refresh of the editor: rows and settings together.
type Snapshot struct {
	Rows      []types.Row    `msgpack:"rows"`
	Settings  settings.Table `msgpack:"settings,omitempty"`
	UpdatedAt time.Time      `msgpack:"updated_at"`
}

type FS struct {
	Root string

	enc *zstd.Encoder
	dec *zstd.Decoder
}

func New(root string) (*FS, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	return &FS{Root: root, enc: enc, dec: dec}, nil
}

func (s *FS) JobDir(id string) string { return filepath.Join(s.Root, id) }

// NewJob creates an empty job directory and returns its id.
func (s *FS) NewJob() (string, error) {
	id := uuid.NewString()
	if _, err := s.MkJob(id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *FS) MkJob(id string) (string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("invalid job id %q", id)
	}
	j := s.JobDir(id)
	return j, os.MkdirAll(j, 0o755)
}

func (s *FS) exists(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrJobNotFound
	}
	if _, err := os.Stat(s.JobDir(id)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrJobNotFound
		}
		return err
	}
	return nil
}

// SaveSnapshot replaces the job's snapshot.
func (s *FS) SaveSnapshot(id string, snap Snapshot) error {
	if err := s.exists(id); err != nil {
		return err
	}
	if snap.UpdatedAt.IsZero() {
		snap.UpdatedAt = time.Now().UTC()
	}
	b, err := msgpack.Marshal(&snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return writeAtomic(filepath.Join(s.JobDir(id), snapshotFile), s.enc.EncodeAll(b, nil))
}

// LoadSnapshot returns the latest snapshot. A job with no snapshot yet has
// an empty one.
func (s *FS) LoadSnapshot(id string) (Snapshot, error) {
	if err := s.exists(id); err != nil {
		return Snapshot{}, err
	}
	raw, err := os.ReadFile(filepath.Join(s.JobDir(id), snapshotFile))
	if errors.Is(err, fs.ErrNotExist) {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, err
	}
	b, err := s.dec.DecodeAll(raw, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("decompress snapshot: %w", err)
	}
	var snap Snapshot
	if err := msgpack.Unmarshal(b, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

// SaveFigure stores the last successfully rendered figure document.
func (s *FS) SaveFigure(id string, doc []byte) error {
	if err := s.exists(id); err != nil {
		return err
	}
	return writeAtomic(filepath.Join(s.JobDir(id), figureFile), doc)
}

func (s *FS) LoadFigure(id string) ([]byte, error) {
	if err := s.exists(id); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(filepath.Join(s.JobDir(id), figureFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrJobNotFound
	}
	return b, err
}

func writeAtomic(path string, b []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

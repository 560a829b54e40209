// Package store persists trained model bundles on disk.
//
// Each kind is written to {root}/{kind}.gob.gz as a gob-encoded envelope
// holding metadata, a sha256 checksum, and the gzip-compressed model. New
// files are written to a temporary name and renamed into place, so a crash
// mid-save leaves the previous model intact.
package store

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/actuallystonmai/product-recommender/internal/domain"
)

// Metadata describes one stored bundle. Bundles written by the same
// SaveAll call share a Generation.
type Metadata struct {
	Kind       string
	Generation string
	SavedAt    time.Time
	Checksum   string
	SizeBytes  int64
}

type storedFile struct {
	Metadata       Metadata
	CompressedData []byte
}

type Store struct {
	root string
	mu   sync.RWMutex
}

func NewStore(root string) (*Store, error) {
	if root == "" {
		return nil, errors.New("model store root is empty")
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create model directory: %w", err)
	}
	return &Store{root: root}, nil
}

func (s *Store) path(kind string) string {
	return filepath.Join(s.root, kind+".gob.gz")
}

// SaveAll writes several bundles as one generation. Every bundle is
// encoded and synced to a temporary file before any of them is renamed
// into place, so an encode or write failure leaves all previous files
// untouched.
func (s *Store) SaveAll(bundles map[string]any) error {
	kinds := make([]string, 0, len(bundles))
	for kind := range bundles {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	generation := uuid.NewString()
	savedAt := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	staged := make(map[string]string, len(kinds))
	defer func() {
		for _, tmp := range staged {
			os.Remove(tmp)
		}
	}()

	for _, kind := range kinds {
		tmp, err := s.stage(kind, bundles[kind], Metadata{Kind: kind, Generation: generation, SavedAt: savedAt})
		if err != nil {
			return err
		}
		staged[kind] = tmp
	}

	for _, kind := range kinds {
		if err := os.Rename(staged[kind], s.path(kind)); err != nil {
			return fmt.Errorf("rename %s model into place: %w", kind, err)
		}
		delete(staged, kind)
	}
	return nil
}

// stage encodes bundle into a synced temporary file and returns its name.
func (s *Store) stage(kind string, bundle any, meta Metadata) (string, error) {
	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(bundle); err != nil {
		return "", fmt.Errorf("encode %s model: %w", kind, err)
	}

	sum := sha256.Sum256(raw.Bytes())

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(raw.Bytes()); err != nil {
		return "", fmt.Errorf("compress %s model: %w", kind, err)
	}
	if err := gzw.Close(); err != nil {
		return "", fmt.Errorf("compress %s model: %w", kind, err)
	}

	meta.Checksum = hex.EncodeToString(sum[:])
	meta.SizeBytes = int64(compressed.Len())
	file := storedFile{Metadata: meta, CompressedData: compressed.Bytes()}

	tmp, err := os.CreateTemp(s.root, kind+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file for %s model: %w", kind, err)
	}
	tmpName := tmp.Name()

	if err := gob.NewEncoder(tmp).Encode(file); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write %s model: %w", kind, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("sync %s model: %w", kind, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("close %s model: %w", kind, err)
	}
	return tmpName, nil
}

// Load decodes the bundle stored under kind into dst. A missing file is
// reported as domain.ErrModelAbsent.
func (s *Store) Load(kind string, dst any) (Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := os.Open(s.path(kind))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Metadata{}, fmt.Errorf("load %s model: %w", kind, domain.ErrModelAbsent)
		}
		return Metadata{}, fmt.Errorf("open %s model: %w", kind, err)
	}
	defer f.Close()

	var file storedFile
	if err := gob.NewDecoder(f).Decode(&file); err != nil {
		return Metadata{}, fmt.Errorf("decode %s model file: %w", kind, err)
	}

	gzr, err := gzip.NewReader(bytes.NewReader(file.CompressedData))
	if err != nil {
		return Metadata{}, fmt.Errorf("decompress %s model: %w", kind, err)
	}
	defer gzr.Close()

	raw, err := io.ReadAll(gzr)
	if err != nil {
		return Metadata{}, fmt.Errorf("decompress %s model: %w", kind, err)
	}

	sum := sha256.Sum256(raw)
	if hex.EncodeToString(sum[:]) != file.Metadata.Checksum {
		return Metadata{}, fmt.Errorf("%s model checksum mismatch", kind)
	}

	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(dst); err != nil {
		return Metadata{}, fmt.Errorf("decode %s model: %w", kind, err)
	}
	return file.Metadata, nil
}

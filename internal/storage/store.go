package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/agencyops/agencyops/internal/config"
	ierr "github.com/agencyops/agencyops/internal/errors"
)

// Kind is the folder a document is written under
type Kind string

const (
	KindInvoices Kind = "invoices"
	KindReceipts Kind = "receipts"
)

// File is an opened document. The caller must close Content.
type File struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
	Content io.ReadSeekCloser
}

// Store persists rendered documents. Remove of a missing file succeeds.
type Store interface {
	Save(ctx context.Context, kind Kind, name string, data []byte) (string, error)
	Remove(ctx context.Context, kind Kind, name string) error
	// Rename moves a document to its final name, replacing any file there
	Rename(ctx context.Context, kind Kind, from, to string) (string, error)
	Open(ctx context.Context, kind Kind, name string) (*File, error)
	Exists(ctx context.Context, kind Kind, name string) (bool, error)
}

type localStore struct {
	root string
}

// NewLocalStore keeps documents on disk under storage.root_dir
func NewLocalStore(cfg *config.Configuration) (Store, error) {
	root, err := filepath.Abs(cfg.Storage.RootDir)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("invalid storage root directory").
			Mark(ierr.ErrSystem)
	}
	return &localStore{root: root}, nil
}

// ValidateName rejects names that could escape their folder
func ValidateName(name string) error {
	if name == "" ||
		name == "." ||
		name == ".." ||
		strings.ContainsAny(name, `/\`) ||
		strings.Contains(name, "..") ||
		strings.ContainsRune(name, 0) {
		return ierr.NewError("invalid file name").
			WithHint("Invalid filename").
			WithReportableDetails(map[string]any{
				"name": name,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (s *localStore) path(kind Kind, name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	switch kind {
	case KindInvoices, KindReceipts:
	default:
		return "", ierr.NewErrorf("unknown document kind %q", kind).
			Mark(ierr.ErrSystem)
	}
	return filepath.Join(s.root, string(kind), name), nil
}

// Save writes to a temporary file and renames it into place so a failed write
// never leaves a partial document behind
func (s *localStore) Save(_ context.Context, kind Kind, name string, data []byte) (string, error) {
	path, err := s.path(kind, name)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", ierr.WithError(err).
			WithHint("failed to create document folder").
			Mark(ierr.ErrSystem)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("failed to write document").
			Mark(ierr.ErrSystem)
	}
	tmpName := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr == nil {
		writeErr = closeErr
	}
	if writeErr == nil {
		writeErr = os.Rename(tmpName, path)
	}
	if writeErr != nil {
		_ = os.Remove(tmpName)
		return "", ierr.WithError(writeErr).
			WithHint("failed to write document").
			WithReportableDetails(map[string]any{
				"kind": kind,
				"name": name,
			}).
			Mark(ierr.ErrSystem)
	}

	return path, nil
}

func (s *localStore) Remove(_ context.Context, kind Kind, name string) error {
	path, err := s.path(kind, name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return ierr.WithError(err).
			WithHint("failed to remove document").
			WithReportableDetails(map[string]any{
				"kind": kind,
				"name": name,
			}).
			Mark(ierr.ErrSystem)
	}
	return nil
}

func (s *localStore) Rename(_ context.Context, kind Kind, from, to string) (string, error) {
	src, err := s.path(kind, from)
	if err != nil {
		return "", err
	}
	dst, err := s.path(kind, to)
	if err != nil {
		return "", err
	}
	if err := os.Rename(src, dst); err != nil {
		if os.IsNotExist(err) {
			return "", ierr.WithError(err).
				WithHint("PDF file not found").
				WithReportableDetails(map[string]any{
					"name": from,
				}).
				Mark(ierr.ErrNotFound)
		}
		return "", ierr.WithError(err).
			WithHint("failed to move document").
			WithReportableDetails(map[string]any{
				"kind": kind,
				"from": from,
				"to":   to,
			}).
			Mark(ierr.ErrSystem)
	}
	return dst, nil
}

func (s *localStore) Open(_ context.Context, kind Kind, name string) (*File, error) {
	path, err := s.path(kind, name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ierr.WithError(err).
				WithHint("PDF file not found").
				WithReportableDetails(map[string]any{
					"name": name,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("failed to open document").
			Mark(ierr.ErrSystem)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, ierr.WithError(err).
			WithHint("failed to open document").
			Mark(ierr.ErrSystem)
	}

	return &File{
		Name:    name,
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Content: f,
	}, nil
}

func (s *localStore) Exists(_ context.Context, kind Kind, name string) (bool, error) {
	path, err := s.path(kind, name)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, ierr.WithError(err).
		WithHint("failed to check document").
		Mark(ierr.ErrSystem)
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package trailstore

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/waypath/lib/clock"
	"github.com/bureau-foundation/waypath/lib/trail"
)

const (
	// Extension is the suffix of waypoint stream files.
	Extension = ".path"

	// ManifestExtension is the suffix of manifest sidecar files.
	ManifestExtension = ".meta"

	lockFileName = ".lock"
)

// Config holds the parameters for opening a Store. Directory is
// required.
type Config struct {
	// Directory holds the path files. It is created (mode 0755) if it
	// does not exist.
	Directory string

	// Logger receives load diagnostics. If nil, a no-op logger is used.
	Logger *slog.Logger

	// Clock stamps manifests. If nil, the real clock is used.
	Clock clock.Clock
}

// Store reads and writes path files in one directory. It is safe for
// concurrent use; concurrent writes of the same name race benignly
// (the last rename wins, and neither reader nor writer sees a partial
// file).
type Store struct {
	directory string
	logger    *slog.Logger
	clock     clock.Clock
	lock      *os.File
}

// Open creates the directory if needed and takes an exclusive advisory
// lock on it. Returns an error wrapping [ErrLocked] when another Store
// holds the lock. The caller must Close the Store.
func Open(cfg Config) (*Store, error) {
	if cfg.Directory == "" {
		return nil, fmt.Errorf("trailstore: Directory is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	pathClock := cfg.Clock
	if pathClock == nil {
		pathClock = clock.Real()
	}

	if err := os.MkdirAll(cfg.Directory, 0755); err != nil {
		return nil, fmt.Errorf("trailstore: creating %s: %w", cfg.Directory, err)
	}

	lock, err := os.OpenFile(filepath.Join(cfg.Directory, lockFileName), os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("trailstore: opening lock file: %w", err)
	}
	if err := unix.Flock(int(lock.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		lock.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, fmt.Errorf("trailstore: %s: %w", cfg.Directory, ErrLocked)
		}
		return nil, fmt.Errorf("trailstore: locking %s: %w", cfg.Directory, err)
	}

	logger.Debug("path store opened", "directory", cfg.Directory)
	return &Store{
		directory: cfg.Directory,
		logger:    logger,
		clock:     pathClock,
		lock:      lock,
	}, nil
}

// Close releases the directory lock.
func (s *Store) Close() error {
	if s.lock == nil {
		return nil
	}
	unlockErr := unix.Flock(int(s.lock.Fd()), unix.LOCK_UN)
	closeErr := s.lock.Close()
	s.lock = nil
	if unlockErr != nil {
		return fmt.Errorf("trailstore: unlocking %s: %w", s.directory, unlockErr)
	}
	return closeErr
}

// Directory returns the directory the store manages.
func (s *Store) Directory() string { return s.directory }

// FileName returns the absolute or directory-relative file name holding
// the waypoint stream for name.
func (s *Store) FileName(name string) (string, error) {
	if err := trail.ValidateName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.directory, name+Extension), nil
}

// OpenForRead opens the stream for name, passes it to read, and closes
// it when read returns. Errors from read are returned unchanged; a
// failure to open the file is an [*IOError].
func (s *Store) OpenForRead(name string, read func(io.Reader) error) error {
	fileName, err := s.FileName(name)
	if err != nil {
		return err
	}
	return s.readFile(name, fileName, read)
}

// OpenForWrite passes a fresh stream for name to write and, if write
// succeeds, atomically replaces the stored file with what was written.
// The manifest for name is removed before the new stream is renamed
// into place, so the stream loads unverified until a manifest
// describing it is written. If write fails, nothing on disk changes and
// its error is returned unchanged. Failures of the stream itself are
// [*IOError] values.
func (s *Store) OpenForWrite(name string, write func(io.Writer) error) error {
	fileName, err := s.FileName(name)
	if err != nil {
		return err
	}
	return s.writeFileAtomic(name, fileName, write, func() error {
		return s.removeManifest(name)
	})
}

// Exists reports whether a .path file exists for name.
func (s *Store) Exists(name string) bool {
	fileName, err := s.FileName(name)
	if err != nil {
		return false
	}
	info, err := os.Stat(fileName)
	return err == nil && info.Mode().IsRegular()
}

// List returns the names of all stored paths in lexical order. Files
// whose stem is not a valid path name are skipped.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.directory)
	if err != nil {
		return nil, &IOError{Op: "read", Name: s.directory, Err: err}
	}

	var names []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !strings.HasSuffix(entry.Name(), Extension) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), Extension)
		if trail.ValidateName(name) != nil {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Remove deletes the stored files for name. Returns an error wrapping
// trail.ErrNotFound when there is no .path file.
func (s *Store) Remove(name string) error {
	fileName, err := s.FileName(name)
	if err != nil {
		return err
	}
	if err := os.Remove(fileName); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %q", trail.ErrNotFound, name)
		}
		return &IOError{Op: "remove", Name: name, Err: err}
	}
	return s.removeManifest(name)
}

func (s *Store) manifestFileName(name string) string {
	return filepath.Join(s.directory, name+ManifestExtension)
}

func (s *Store) removeManifest(name string) error {
	if err := os.Remove(s.manifestFileName(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &IOError{Op: "remove", Name: name, Err: err}
	}
	return nil
}

func (s *Store) readFile(name, fileName string, read func(io.Reader) error) error {
	file, err := os.Open(fileName)
	if err != nil {
		return &IOError{Op: "open", Name: name, Err: err}
	}
	defer file.Close()

	return read(bufio.NewReader(file))
}

// writeFileAtomic writes through a temporary file in the same
// directory, then syncs and renames it over fileName. beforeRename, if
// set, runs after the data is durable and before the rename; its error
// aborts the write. Any failure removes the temporary file.
func (s *Store) writeFileAtomic(name, fileName string, write func(io.Writer) error, beforeRename func() error) error {
	file, err := os.CreateTemp(s.directory, filepath.Base(fileName)+".*.tmp")
	if err != nil {
		return &IOError{Op: "create", Name: name, Err: err}
	}
	temporaryName := file.Name()

	fail := func(err error) error {
		file.Close()
		os.Remove(temporaryName)
		return err
	}

	buffered := bufio.NewWriter(file)
	if err := write(buffered); err != nil {
		return fail(err)
	}
	if err := buffered.Flush(); err != nil {
		return fail(&IOError{Op: "write", Name: name, Err: err})
	}
	if err := file.Chmod(0644); err != nil {
		return fail(&IOError{Op: "write", Name: name, Err: err})
	}
	if err := file.Sync(); err != nil {
		return fail(&IOError{Op: "sync", Name: name, Err: err})
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryName)
		return &IOError{Op: "close", Name: name, Err: err}
	}
	if beforeRename != nil {
		if err := beforeRename(); err != nil {
			os.Remove(temporaryName)
			return err
		}
	}
	if err := os.Rename(temporaryName, fileName); err != nil {
		os.Remove(temporaryName)
		return &IOError{Op: "rename", Name: name, Err: err}
	}

	// Make the rename itself durable.
	if directory, err := os.Open(s.directory); err == nil {
		directory.Sync()
		directory.Close()
	}
	return nil
}

// Package handoff passes the session port from the waiting process to the
// notifying one through a file, for callers that cannot use environment
// variables (shell scripts, already running processes).
//
// Writers and readers coordinate through an advisory lock on
// "<path>.lock", and the port file itself is replaced atomically, so a
// reader never observes a half-written value.
package handoff

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"

	"github.com/mvp-joe/test-patience"
)

var (
	// ErrPortFileMissing indicates the port file does not exist (yet).
	ErrPortFileMissing = errors.New("port file missing")

	// ErrInvalidPort indicates the port file does not hold a usable port.
	ErrInvalidPort = errors.New("invalid port in port file")
)

func lockPath(path string) string {
	return path + ".lock"
}

// WritePortFile stores port in path.
func WritePortFile(path string, port uint16) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create port file directory: %w", err)
	}

	lock := flock.New(lockPath(path))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock port file: %w", err)
	}
	defer lock.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp port file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(strconv.Itoa(int(port)) + "\n"); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write port file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write port file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to install port file: %w", err)
	}
	return nil
}

// ReadPortFile returns the port stored in path.
func ReadPortFile(path string) (uint16, error) {
	lock := flock.New(lockPath(path))
	if err := lock.RLock(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s: %w", ErrPortFileMissing, path, err)
		}
		return 0, fmt.Errorf("failed to lock port file: %w", err)
	}
	defer lock.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s: %w", ErrPortFileMissing, path, err)
		}
		return 0, fmt.Errorf("failed to read port file: %w", err)
	}

	port, err := patience.ParsePort(string(data))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrInvalidPort, path, err)
	}
	return port, nil
}

// RemovePortFile deletes the port file and its lock file. Missing files are
// not an error.
func RemovePortFile(path string) error {
	var errs []error
	for _, p := range []string{path, lockPath(path)} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// AwaitPortFile returns the port stored in path, waiting for the file to
// appear until ctx is done.
func AwaitPortFile(ctx context.Context, path string) (uint16, error) {
	if port, err := ReadPortFile(path); err == nil || !errors.Is(err, ErrPortFileMissing) {
		return port, err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create port file directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return 0, fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return 0, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	// The file may have been written between the first read and Add.
	if port, err := ReadPortFile(path); err == nil || !errors.Is(err, ErrPortFileMissing) {
		return port, err
	}

	target := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return 0, fmt.Errorf("waiting for port file %s: %w", path, ctx.Err())

		case event, ok := <-watcher.Events:
			if !ok {
				return 0, fmt.Errorf("watcher closed while waiting for %s", path)
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}
			port, err := ReadPortFile(path)
			if errors.Is(err, ErrPortFileMissing) {
				continue
			}
			return port, err

		case err, ok := <-watcher.Errors:
			if !ok {
				return 0, fmt.Errorf("watcher closed while waiting for %s", path)
			}
			return 0, fmt.Errorf("watching for port file: %w", err)
		}
	}
}

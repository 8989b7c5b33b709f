// Package lock serializes acquisitions that write into the same install
// directory. The lock is a file created with O_EXCL in the state directory.
package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	// StaleLockThreshold is the age after which a lock is assumed abandoned.
	StaleLockThreshold = 10 * time.Minute
	// RefreshInterval is how often KeepAlive renews a held lock.
	RefreshInterval = StaleLockThreshold / 4
)

var ErrLockExists = errors.New("acquisition lock exists: another install may be in progress")

// HeldError reports a live lock. It matches ErrLockExists with errors.Is.
type HeldError struct {
	Path string
	// Holder is the pid recorded by the owner, if readable
	Holder string
}

func (e *HeldError) Error() string {
	if e.Holder == "" {
		return fmt.Sprintf("%s (%s)", ErrLockExists, e.Path)
	}
	return fmt.Sprintf("%s (%s held by pid %s)", ErrLockExists, e.Path, e.Holder)
}

func (e *HeldError) Unwrap() error {
	return ErrLockExists
}

// Lock is a held acquisition lock.
type Lock struct {
	path string
	file *os.File
}

// Acquire takes the lock for name in dir. A lock older than
// StaleLockThreshold is removed and taken over once.
func Acquire(ctx context.Context, dir, name string) (*Lock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("invalid lock name: %q", name)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	path := filepath.Join(dir, name+".lock")

	file, err := create(path)
	if errors.Is(err, os.ErrExist) && stale(path) {
		os.Remove(path)
		file, err = create(path)
	}
	if errors.Is(err, os.ErrExist) {
		return nil, &HeldError{Path: path, Holder: holder(path)}
	}
	if err != nil {
		return nil, err
	}

	return &Lock{path: path, file: file}, nil
}

// create makes the lock file and records the owner.
func create(path string) (*os.File, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, err
		}
		return nil, fmt.Errorf("create lock file: %w", err)
	}

	meta := fmt.Sprintf("pid=%d\ntimestamp=%s\n", os.Getpid(), time.Now().UTC().Format(time.RFC3339))
	if _, err = file.WriteString(meta); err == nil {
		err = file.Sync()
	}
	if err != nil {
		file.Close()
		os.Remove(path)
		return nil, fmt.Errorf("write lock file: %w", err)
	}
	return file, nil
}

func stale(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) > StaleLockThreshold
}

func holder(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		if pid, ok := strings.CutPrefix(line, "pid="); ok {
			return strings.TrimSpace(pid)
		}
	}
	return ""
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}

// Refresh renews the lock's mtime so it is not mistaken for stale.
func (l *Lock) Refresh() error {
	if l.path == "" {
		return errors.New("lock already released")
	}
	now := time.Now()
	if err := os.Chtimes(l.path, now, now); err != nil {
		return fmt.Errorf("refresh lock file: %w", err)
	}
	return nil
}

// KeepAlive refreshes the lock every interval until stop is called. Call
// stop before Release.
func (l *Lock) KeepAlive(interval time.Duration) (stop func()) {
	done := make(chan struct{})
	finished := make(chan struct{})
	path := l.path

	go func() {
		defer close(finished)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				now := time.Now()
				os.Chtimes(path, now, now)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			<-finished
		})
	}
}

// Release removes the lock. Calling it again is a no-op.
func (l *Lock) Release() error {
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
	if l.path == "" {
		return nil
	}

	path := l.path
	l.path = ""
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove lock file: %w", err)
	}
	return nil
}

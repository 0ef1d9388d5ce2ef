package converge

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"strconv"

	"github.com/LeonArchie/eosctl/internal/fsutil"
)

// HostFS abstracts the filesystem mutations of a convergence run so the
// engine can be tested against a recording double.
type HostFS interface {
	// EnsureTree creates root if needed and re-applies owner and mode
	// to the whole tree.
	EnsureTree(root, owner string, mode os.FileMode) error

	// ReplacePayload removes everything inside appDir, copies the
	// bundle in, and applies owner and mode to the result.
	ReplacePayload(appDir, bundleDir, owner string, mode os.FileMode) error

	// ResetLogDir recreates dir empty, owned by owner.
	ResetLogDir(dir, owner string) error

	// WriteFile writes data to path atomically with the given mode.
	WriteFile(path string, data []byte, perm os.FileMode) error

	// Remove deletes path. A missing path is not an error.
	Remove(path string) error

	// RemoveAll deletes the tree rooted at path.
	RemoveAll(path string) error
}

// osHostFS is the real HostFS backed by fsutil and the OS account
// database.
type osHostFS struct{}

// NewHostFS returns the HostFS that mutates the real filesystem.
func NewHostFS() HostFS {
	return &osHostFS{}
}

func (osHostFS) EnsureTree(root, owner string, mode os.FileMode) error {
	uid, gid, err := lookupOwner(owner)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(root, mode); err != nil {
		return fmt.Errorf("converge: create %s: %w", root, err)
	}
	return fsutil.SetOwnerMode(root, uid, gid, mode)
}

func (osHostFS) ReplacePayload(appDir, bundleDir, owner string, mode os.FileMode) error {
	uid, gid, err := lookupOwner(owner)
	if err != nil {
		return err
	}
	if err := fsutil.ClearDir(appDir); err != nil {
		return err
	}
	if err := fsutil.CopyTree(bundleDir, appDir); err != nil {
		return err
	}
	return fsutil.SetOwnerMode(appDir, uid, gid, mode)
}

func (osHostFS) ResetLogDir(dir, owner string) error {
	uid, gid, err := lookupOwner(owner)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("converge: remove %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("converge: create %s: %w", dir, err)
	}
	if err := os.Chown(dir, uid, gid); err != nil {
		return fmt.Errorf("converge: chown %s: %w", dir, err)
	}
	return nil
}

func (osHostFS) WriteFile(path string, data []byte, perm os.FileMode) error {
	return fsutil.WriteFileAtomic(path, data, perm)
}

func (osHostFS) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("converge: remove %s: %w", path, err)
	}
	return nil
}

func (osHostFS) RemoveAll(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("converge: remove %s: %w", path, err)
	}
	return nil
}

func lookupOwner(owner string) (uid, gid int, err error) {
	u, err := user.Lookup(owner)
	if err != nil {
		return 0, 0, fmt.Errorf("converge: lookup user %s: %w", owner, err)
	}
	uid, err = strconv.Atoi(u.Uid)
	if err != nil {
		return 0, 0, fmt.Errorf("converge: parse uid %q: %w", u.Uid, err)
	}
	gid, err = strconv.Atoi(u.Gid)
	if err != nil {
		return 0, 0, fmt.Errorf("converge: parse gid %q: %w", u.Gid, err)
	}
	return uid, gid, nil
}

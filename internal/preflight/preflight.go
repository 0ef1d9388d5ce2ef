// Package preflight validates the run's preconditions before any host
// mutation is attempted.
package preflight

import (
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sys/unix"
)

// PreconditionError names the first failed precondition check.
type PreconditionError struct {
	Check  string
	Detail string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("preflight: %s: %s", e.Check, e.Detail)
}

// PrivilegeChecker abstracts privilege checking for testability.
type PrivilegeChecker interface {
	// IsPrivileged returns true if the invoking principal may mutate
	// host state.
	IsPrivileged() bool
}

// unixPrivilegeChecker checks the real effective UID.
type unixPrivilegeChecker struct{}

// NewPrivilegeChecker returns a PrivilegeChecker backed by the process
// effective UID.
func NewPrivilegeChecker() PrivilegeChecker {
	return &unixPrivilegeChecker{}
}

func (c *unixPrivilegeChecker) IsPrivileged() bool {
	return unix.Geteuid() == 0
}

// Checklist names the paths a provisioning run requires before it may
// start.
type Checklist struct {
	// BundleDir is the application bundle directory to stage.
	BundleDir string

	// DeclarationFile is the KEY=VALUE declaration to load.
	DeclarationFile string

	// ManifestFile is the dependency manifest. Its absence is recorded,
	// not fatal: the installer synthesizes a default manifest on first
	// bootstrap.
	ManifestFile string
}

// Result reports the non-fatal observations made during preflight.
type Result struct {
	ManifestPresent bool
}

// Run executes the precondition checks in fixed order, short-circuiting
// on the first failure. Privilege is checked before any filesystem
// access. Run performs no mutation.
func Run(priv PrivilegeChecker, cl Checklist, logger *slog.Logger) (Result, error) {
	log := logger.With("component", "preflight")

	if !priv.IsPrivileged() {
		return Result{}, &PreconditionError{
			Check:  "privilege",
			Detail: "provisioning requires root privileges",
		}
	}
	log.Info("privilege check passed")

	info, err := os.Stat(cl.BundleDir)
	if err != nil {
		return Result{}, &PreconditionError{
			Check:  "bundle",
			Detail: fmt.Sprintf("application bundle %s is not accessible: %v", cl.BundleDir, err),
		}
	}
	if !info.IsDir() {
		return Result{}, &PreconditionError{
			Check:  "bundle",
			Detail: fmt.Sprintf("application bundle %s is not a directory", cl.BundleDir),
		}
	}
	log.Info("bundle check passed", "path", cl.BundleDir)

	if info, err := os.Stat(cl.DeclarationFile); err != nil || info.IsDir() {
		return Result{}, &PreconditionError{
			Check:  "declaration",
			Detail: fmt.Sprintf("declaration file %s is not a readable file", cl.DeclarationFile),
		}
	}
	log.Info("declaration check passed", "path", cl.DeclarationFile)

	res := Result{}
	if info, err := os.Stat(cl.ManifestFile); err == nil && !info.IsDir() {
		res.ManifestPresent = true
	}
	log.Info("manifest probed", "path", cl.ManifestFile, "present", res.ManifestPresent)

	return res, nil
}

package pkgmgr

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// DependencyInstallError reports a failed package installation. It is
// fatal: the run aborts without attempting convergence, since the
// service cannot start without its dependencies.
type DependencyInstallError struct {
	Output string
	Err    error
}

func (e *DependencyInstallError) Error() string {
	out := strings.TrimSpace(e.Output)
	if out == "" {
		return fmt.Sprintf("pkgmgr: dependency install failed: %v", e.Err)
	}
	return fmt.Sprintf("pkgmgr: dependency install failed: %s: %v", out, e.Err)
}

func (e *DependencyInstallError) Unwrap() error { return e.Err }

// Runner executes an external command and returns its combined output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// DefaultCommand is the package installation command prefix: the EOS
// application is Python, so its manifest is installed with pip.
var DefaultCommand = []string{"pip3", "install", "--no-cache-dir"}

// Installer invokes the package installation step exactly once per run.
type Installer struct {
	command []string
	runner  Runner
	logger  *slog.Logger
}

// NewInstaller creates an Installer using the given command prefix, or
// DefaultCommand when command is empty.
func NewInstaller(command []string, logger *slog.Logger) *Installer {
	if len(command) == 0 {
		command = DefaultCommand
	}
	return &Installer{
		command: command,
		runner:  execRunner{},
		logger:  logger.With("component", "pkgmgr"),
	}
}

// Install installs the pinned package set in a single invocation. A
// non-zero completion is returned as a DependencyInstallError.
func (ins *Installer) Install(ctx context.Context, pkgs []Package) error {
	if len(pkgs) == 0 {
		return &DependencyInstallError{Err: fmt.Errorf("empty package set")}
	}

	args := append([]string(nil), ins.command[1:]...)
	for _, p := range pkgs {
		args = append(args, p.Pin())
	}

	ins.logger.Info("installing dependencies", "packages", len(pkgs), "command", ins.command[0])
	output, err := ins.runner.Run(ctx, ins.command[0], args...)
	if err != nil {
		return &DependencyInstallError{Output: string(output), Err: err}
	}
	ins.logger.Info("dependencies installed", "packages", len(pkgs))
	return nil
}

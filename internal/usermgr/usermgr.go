// Package usermgr performs system account mutations through the OS
// user management tools.
package usermgr

import (
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Manager abstracts the account mutations a convergence run performs.
// Reads belong to the hoststate inspector; only writes live here.
type Manager interface {
	// Create creates a system account with a home directory and the
	// default login shell.
	Create(name string) error

	// SetCredential sets the account's credential. The secret is
	// passed over stdin, never on a command line.
	SetCredential(name, secret string) error

	// AddToGroup adds the account to a supplementary group.
	AddToGroup(name, group string) error
}

// execManager implements Manager by invoking useradd, chpasswd and
// usermod.
type execManager struct {
	logger *slog.Logger
}

// NewManager returns a Manager backed by the real OS user tools.
func NewManager(logger *slog.Logger) Manager {
	return &execManager{logger: logger.With("component", "usermgr")}
}

func (m *execManager) Create(name string) error {
	if err := run("useradd", "-m", "-s", "/bin/bash", name); err != nil {
		return err
	}
	m.logger.Info("user created", "user", name)
	return nil
}

func (m *execManager) SetCredential(name, secret string) error {
	cmd := exec.Command("chpasswd")
	cmd.Stdin = strings.NewReader(name + ":" + secret + "\n")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("usermgr: chpasswd for %s: %s: %w", name, strings.TrimSpace(string(output)), err)
	}
	m.logger.Info("credential set", "user", name)
	return nil
}

func (m *execManager) AddToGroup(name, group string) error {
	if err := run("usermod", "-aG", group, name); err != nil {
		return err
	}
	m.logger.Info("group membership added", "user", name, "group", group)
	return nil
}

func run(name string, args ...string) error {
	output, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("usermgr: %s: %s: %w", name, strings.TrimSpace(string(output)), err)
	}
	return nil
}

package systemd

import (
	"fmt"
	"os/exec"
	"strings"
)

// systemctlController implements Controller using os/exec to call systemctl.
type systemctlController struct{}

// NewController returns a Controller that calls the real systemctl binary.
func NewController() Controller {
	return &systemctlController{}
}

func (c *systemctlController) IsAvailable() bool {
	_, err := exec.LookPath("systemctl")
	return err == nil
}

func (c *systemctlController) DaemonReload() error {
	return c.run("daemon-reload")
}

func (c *systemctlController) Enable(service string) error {
	return c.run("enable", service)
}

func (c *systemctlController) Disable(service string) error {
	return c.run("disable", service)
}

func (c *systemctlController) Start(service string) error {
	return c.run("start", service)
}

func (c *systemctlController) Stop(service string) error {
	return c.run("stop", service)
}

func (c *systemctlController) IsActive(service string) bool {
	err := exec.Command("systemctl", "is-active", "--quiet", service).Run()
	return err == nil
}

func (c *systemctlController) IsEnabled(service string) bool {
	err := exec.Command("systemctl", "is-enabled", "--quiet", service).Run()
	return err == nil
}

func (c *systemctlController) Status(service string) (string, error) {
	// systemctl status exits non-zero for inactive or failed units;
	// the text it printed is still the answer.
	output, err := exec.Command("systemctl", "status", "--no-pager", "--full", service).CombinedOutput()
	text := strings.TrimSpace(string(output))
	if err != nil && text == "" {
		return "", fmt.Errorf("systemd: systemctl status %s: %w", service, err)
	}
	return text, nil
}

func (c *systemctlController) run(args ...string) error {
	cmd := exec.Command("systemctl", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("systemd: systemctl %s: %s: %w", args[0], strings.TrimSpace(string(output)), err)
	}
	return nil
}

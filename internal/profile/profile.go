// Package profile holds the operator-tunable provisioning profile: the
// host paths, the package-installer command, and the two installer
// variant flags. It is populated from an optional YAML file.
package profile

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults for zero-valued profile fields.
const (
	DefaultInstallRoot     = "/opt/EOS_server"
	DefaultUnitDir         = "/etc/systemd/system"
	DefaultLogrotateDir    = "/etc/logrotate.d"
	DefaultSudoersDir      = "/etc/sudoers.d"
	DefaultPrivilegedGroup = "sudo"
)

// Config is the provisioning profile.
type Config struct {
	// InstallRoot is the root of the installed tree.
	// Default: /opt/EOS_server
	InstallRoot string `yaml:"install_root"`

	// UnitDir is the directory for service unit files.
	// Default: /etc/systemd/system
	UnitDir string `yaml:"unit_dir"`

	// LogrotateDir is the directory for log-rotation policy files.
	// Default: /etc/logrotate.d
	LogrotateDir string `yaml:"logrotate_dir"`

	// SudoersDir is the directory for sudoers drop-ins.
	// Default: /etc/sudoers.d
	SudoersDir string `yaml:"sudoers_dir"`

	// PrivilegedGroup is the group granting elevated execution.
	// Default: sudo
	PrivilegedGroup string `yaml:"privileged_group"`

	// EntryCommand overrides the unit's ExecStart line (optional).
	EntryCommand string `yaml:"entry_command"`

	// Environment is a list of KEY=VALUE entries added to the unit
	// (optional).
	Environment []string `yaml:"environment"`

	// PipCommand is the package installation command prefix.
	// Default: pip3 install --no-cache-dir
	PipCommand []string `yaml:"pip_command"`

	// WithPrivilegedSudo selects the passwordless-sudo installer
	// variant.
	WithPrivilegedSudo bool `yaml:"with_privileged_sudo"`

	// WithLogRotation selects the log-rotation installer variant.
	WithLogRotation bool `yaml:"with_log_rotation"`
}

// ApplyDefaults sets default values for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.InstallRoot == "" {
		c.InstallRoot = DefaultInstallRoot
	}
	if c.UnitDir == "" {
		c.UnitDir = DefaultUnitDir
	}
	if c.LogrotateDir == "" {
		c.LogrotateDir = DefaultLogrotateDir
	}
	if c.SudoersDir == "" {
		c.SudoersDir = DefaultSudoersDir
	}
	if c.PrivilegedGroup == "" {
		c.PrivilegedGroup = DefaultPrivilegedGroup
	}
}

// Validate checks that required fields are set.
func (c *Config) Validate() error {
	if c.InstallRoot == "" {
		return errors.New("profile: InstallRoot is required")
	}
	if c.UnitDir == "" {
		return errors.New("profile: UnitDir is required")
	}
	if c.PrivilegedGroup == "" {
		return errors.New("profile: PrivilegedGroup is required")
	}
	return nil
}

// Load reads the YAML profile at path. An empty path yields the default
// profile; a named file must exist and parse.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("profile: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("profile: parse %s: %w", path, err)
		}
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Package declare loads the operator-supplied provisioning declaration
// and binds it into a validated ProvisioningConfig.
package declare

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Required declaration keys.
const (
	KeyServiceName = "SERVICE_NAME"
	KeyUser        = "USER"
	KeyPassword    = "PASSWORD"
)

// DefaultInstallRoot is the fixed install root for the EOS server tree.
const DefaultInstallRoot = "/opt/EOS_server"

// ProvisioningConfig is the validated, immutable result of loading the
// declaration file. It is parsed once per run.
type ProvisioningConfig struct {
	// ServiceName is the systemd service identifier, without the
	// ".service" suffix.
	ServiceName string

	// RunAsUser is the system account the service runs as.
	RunAsUser string

	// Credential is the secret set on the account when it is first
	// created. It is never logged and never placed on a command line.
	Credential string

	// InstallRoot is the root of the installed tree.
	InstallRoot string

	// AppDir is the application payload directory under InstallRoot.
	AppDir string

	// LogDir is the service log directory.
	LogDir string

	// Extra holds unknown declaration keys, retained opaquely for
	// forward compatibility. They are not validated.
	Extra map[string]string
}

// ApplyRoot recomputes the derived paths from a new install root.
func (c *ProvisioningConfig) ApplyRoot(root string) {
	if root == "" {
		root = DefaultInstallRoot
	}
	c.InstallRoot = root
	c.AppDir = filepath.Join(root, "app")
	c.LogDir = filepath.Join("/var/log", c.ServiceName)
}

// ConfigError reports every missing or malformed declaration key in one
// pass, so the operator sees the whole problem in a single run.
type ConfigError struct {
	Missing []string
	Invalid []string
}

func (e *ConfigError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required keys: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid values: "+strings.Join(e.Invalid, "; "))
	}
	return "declare: " + strings.Join(parts, "; ")
}

var (
	serviceNameRe = regexp.MustCompile(`^[A-Za-z0-9:_.-]+$`)
	accountNameRe = regexp.MustCompile(`^[a-z_][a-z0-9_-]*\$?$`)
)

func validate(c *ProvisioningConfig) *ConfigError {
	cerr := &ConfigError{}
	if c.ServiceName == "" {
		cerr.Missing = append(cerr.Missing, KeyServiceName)
	} else if !serviceNameRe.MatchString(c.ServiceName) {
		cerr.Invalid = append(cerr.Invalid, fmt.Sprintf("%s %q is not a valid unit identifier", KeyServiceName, c.ServiceName))
	}
	if c.RunAsUser == "" {
		cerr.Missing = append(cerr.Missing, KeyUser)
	} else if !accountNameRe.MatchString(c.RunAsUser) {
		cerr.Invalid = append(cerr.Invalid, fmt.Sprintf("%s %q is not a valid account name", KeyUser, c.RunAsUser))
	}
	if c.Credential == "" {
		cerr.Missing = append(cerr.Missing, KeyPassword)
	}
	if len(cerr.Missing) == 0 && len(cerr.Invalid) == 0 {
		return nil
	}
	return cerr
}

// Package converge plans and applies the minimal set of host mutations
// that bring a machine to the declared state. Planning is pure; every
// applied mutation is individually idempotent, so a partially-completed
// run is repaired by simply running again.
package converge

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Desired is the target host state for one provisioning run, assembled
// from the loaded declaration and the tool profile.
type Desired struct {
	// ServiceName is the systemd service identifier, no ".service"
	// suffix.
	ServiceName string

	// RunAsUser is the system account the service runs as.
	RunAsUser string

	// Credential is set on the account only when it is first created.
	// An existing account's credential is never touched.
	Credential string

	// PrivilegedGroup is the supplementary group the account must
	// belong to. Default: sudo.
	PrivilegedGroup string

	// InstallRoot is the root of the installed tree.
	InstallRoot string

	// AppDir receives the application payload, replaced wholesale on
	// every run.
	AppDir string

	// BundleDir is the source application bundle.
	BundleDir string

	// LogDir is the service log directory, recreated each run when
	// log rotation is managed.
	LogDir string

	// UnitFilePath is where the service unit definition is written.
	UnitFilePath string

	// LogrotatePath is where the log-rotation policy is written.
	LogrotatePath string

	// SudoersPath is where the passwordless-elevation drop-in is
	// written.
	SudoersPath string

	// EntryCommand is the unit's ExecStart line. Default: run the
	// bundled app.py with the system python3.
	EntryCommand string

	// Environment is a list of KEY=VALUE entries added to the unit.
	Environment []string

	// TreeMode is the permission mode re-applied to the installed
	// tree on every run. Default: 0755.
	TreeMode os.FileMode

	// WithPrivilegedSudo selects the installer variant that grants
	// the account passwordless elevated execution via a sudoers
	// drop-in.
	WithPrivilegedSudo bool

	// WithLogRotation selects the installer variant that manages the
	// log directory and a log-rotation policy.
	WithLogRotation bool
}

// ApplyDefaults sets default values for zero-valued fields. It needs
// ServiceName and RunAsUser to derive the path defaults.
func (d *Desired) ApplyDefaults() {
	if d.PrivilegedGroup == "" {
		d.PrivilegedGroup = "sudo"
	}
	if d.TreeMode == 0 {
		d.TreeMode = 0o755
	}
	if d.AppDir == "" && d.InstallRoot != "" {
		d.AppDir = filepath.Join(d.InstallRoot, "app")
	}
	if d.EntryCommand == "" && d.AppDir != "" {
		d.EntryCommand = "/usr/bin/python3 " + filepath.Join(d.AppDir, "app.py")
	}
	if d.UnitFilePath == "" && d.ServiceName != "" {
		d.UnitFilePath = filepath.Join("/etc/systemd/system", d.ServiceName+".service")
	}
	if d.LogrotatePath == "" && d.ServiceName != "" {
		d.LogrotatePath = filepath.Join("/etc/logrotate.d", d.ServiceName)
	}
	if d.SudoersPath == "" && d.RunAsUser != "" {
		d.SudoersPath = filepath.Join("/etc/sudoers.d", d.RunAsUser)
	}
	if d.LogDir == "" && d.ServiceName != "" {
		d.LogDir = filepath.Join("/var/log", d.ServiceName)
	}
}

// Validate checks that required fields are set.
func (d *Desired) Validate() error {
	if d.ServiceName == "" {
		return errors.New("converge: desired: ServiceName is required")
	}
	if d.RunAsUser == "" {
		return errors.New("converge: desired: RunAsUser is required")
	}
	if d.InstallRoot == "" {
		return errors.New("converge: desired: InstallRoot is required")
	}
	if d.BundleDir == "" {
		return errors.New("converge: desired: BundleDir is required")
	}
	if d.UnitFilePath == "" {
		return errors.New("converge: desired: UnitFilePath is required")
	}
	if d.WithLogRotation && d.LogrotatePath == "" {
		return errors.New("converge: desired: LogrotatePath is required with log rotation")
	}
	if d.WithPrivilegedSudo && d.SudoersPath == "" {
		return errors.New("converge: desired: SudoersPath is required with privileged sudo")
	}
	return nil
}

// Unit returns the service unit descriptor generated from the desired
// state.
func (d Desired) Unit() UnitDescriptor {
	u := UnitDescriptor{
		Description:      fmt.Sprintf("EOS application service (%s)", d.ServiceName),
		User:             d.RunAsUser,
		WorkingDirectory: d.AppDir,
		ExecStart:        d.EntryCommand,
		Restart:          RestartAlways,
		Environment:      d.Environment,
	}
	if d.WithLogRotation {
		logFile := filepath.Join(d.LogDir, d.ServiceName+".log")
		u.StandardOutput = "append:" + logFile
		u.StandardError = "append:" + logFile
	}
	return u
}

// Rotation returns the log-rotation policy generated from the desired
// state.
func (d Desired) Rotation() LogRotationPolicy {
	return LogRotationPolicy{
		TargetGlob:  filepath.Join(d.LogDir, "*.log"),
		Period:      PeriodDaily,
		RetainCount: 7,
		Compress:    true,
		Owner:       d.RunAsUser,
		Group:       d.RunAsUser,
		PostRotate:  fmt.Sprintf("systemctl restart %s >/dev/null 2>&1 || true", d.ServiceName),
	}
}

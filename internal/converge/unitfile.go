package converge

import (
	"fmt"
	"strings"
)

// RestartPolicy is the unit's restart behavior.
type RestartPolicy string

// Restart policies understood by the service manager.
const (
	RestartAlways    RestartPolicy = "always"
	RestartOnFailure RestartPolicy = "on-failure"
	RestartNever     RestartPolicy = "no"
)

// UnitDescriptor describes the long-running service unit. It is
// generated from the desired state and written wholesale to the unit
// file path on every convergence run — no partial edits.
type UnitDescriptor struct {
	Description      string
	User             string
	WorkingDirectory string
	ExecStart        string
	Restart          RestartPolicy
	Environment      []string
	StandardOutput   string
	StandardError    string
}

// GenerateUnitFile renders the descriptor as a complete systemd unit
// file.
func GenerateUnitFile(u UnitDescriptor) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[Unit]\nDescription=%s\nAfter=network.target\n\n", u.Description)

	fmt.Fprintf(&b, "[Service]\nType=simple\nUser=%s\nWorkingDirectory=%s\n", u.User, u.WorkingDirectory)
	for _, env := range u.Environment {
		fmt.Fprintf(&b, "Environment=%s\n", env)
	}
	fmt.Fprintf(&b, "ExecStart=%s\nRestart=%s\nRestartSec=5s\n", u.ExecStart, u.Restart)
	if u.StandardOutput != "" {
		fmt.Fprintf(&b, "StandardOutput=%s\n", u.StandardOutput)
	}
	if u.StandardError != "" {
		fmt.Fprintf(&b, "StandardError=%s\n", u.StandardError)
	}

	b.WriteString("\n[Install]\nWantedBy=multi-user.target\n")
	return b.String()
}

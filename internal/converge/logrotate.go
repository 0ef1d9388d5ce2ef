package converge

import (
	"fmt"
	"strings"
)

// RotationPeriod is how often logs rotate.
type RotationPeriod string

// Rotation periods supported by the policy file.
const (
	PeriodDaily  RotationPeriod = "daily"
	PeriodWeekly RotationPeriod = "weekly"
)

// LogRotationPolicy describes the rotation of the service's log files.
// Like the unit file, it is rewritten wholesale on every run.
type LogRotationPolicy struct {
	TargetGlob  string
	Period      RotationPeriod
	RetainCount int
	Compress    bool
	Owner       string
	Group       string
	PostRotate  string
}

// GenerateLogrotatePolicy renders the policy as a logrotate
// configuration file. Compression is delayed by one rotation so the
// most recent rotated log stays greppable, and missing or empty logs
// never fail the rotation.
func GenerateLogrotatePolicy(p LogRotationPolicy) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s {\n", p.TargetGlob)
	fmt.Fprintf(&b, "    %s\n", p.Period)
	fmt.Fprintf(&b, "    rotate %d\n", p.RetainCount)
	if p.Compress {
		b.WriteString("    compress\n    delaycompress\n")
	}
	b.WriteString("    notifempty\n    missingok\n")
	fmt.Fprintf(&b, "    create 0640 %s %s\n", p.Owner, p.Group)
	if p.PostRotate != "" {
		fmt.Fprintf(&b, "    postrotate\n        %s\n    endscript\n", p.PostRotate)
	}
	b.WriteString("}\n")
	return b.String()
}

// GenerateSudoersDropIn renders the passwordless-elevation drop-in
// scoped to the single service account.
func GenerateSudoersDropIn(user string) string {
	return fmt.Sprintf("%s ALL=(ALL) NOPASSWD:ALL\n", user)
}

package converge

import "github.com/LeonArchie/eosctl/internal/hoststate"

// Step identifies one host mutation in a convergence plan.
type Step int

// Convergence steps, in dependency order.
const (
	// StepStopService stops the running service before its payload is
	// replaced underneath it.
	StepStopService Step = iota

	// StepCreateUser creates the service account and sets its
	// credential. Planned only when the account does not exist.
	StepCreateUser

	// StepAddUserToGroup adds the account to the privileged group.
	StepAddUserToGroup

	// StepWriteSudoers writes the passwordless-elevation drop-in.
	StepWriteSudoers

	// StepEnsureTree creates the install root and re-applies
	// ownership and mode to the whole tree.
	StepEnsureTree

	// StepReplacePayload clears the app directory and copies the
	// bundle in. A destructive wholesale replace.
	StepReplacePayload

	// StepResetLogDir recreates the log directory empty.
	StepResetLogDir

	// StepWriteUnitFile writes the service unit definition.
	StepWriteUnitFile

	// StepWriteLogrotatePolicy writes the log-rotation policy.
	StepWriteLogrotatePolicy

	// StepDaemonReload reloads the service-manager unit cache so the
	// new definition is recognized before activation.
	StepDaemonReload
)

var stepNames = map[Step]string{
	StepStopService:          "stop-service",
	StepCreateUser:           "create-user",
	StepAddUserToGroup:       "add-user-to-group",
	StepWriteSudoers:         "write-sudoers-drop-in",
	StepEnsureTree:           "ensure-install-tree",
	StepReplacePayload:       "replace-payload",
	StepResetLogDir:          "reset-log-dir",
	StepWriteUnitFile:        "write-unit-file",
	StepWriteLogrotatePolicy: "write-logrotate-policy",
	StepDaemonReload:         "daemon-reload",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return "unknown"
}

// Plan computes the ordered minimal step list that takes the host from
// current to desired. Plan is pure: it performs no I/O and never
// mutates its arguments, so planning decisions are directly testable.
//
// Conditional steps (stop, user creation, group membership) are planned
// only when the inspected state requires them. Ownership, payload, unit
// and policy steps are planned unconditionally: they are cheap,
// idempotent, and guard against drift an inspection cannot cheaply
// detect.
func Plan(d Desired, current hoststate.State) []Step {
	var steps []Step

	if current.ServiceActive {
		steps = append(steps, StepStopService)
	}
	if !current.UserExists {
		steps = append(steps, StepCreateUser)
	}
	if !current.UserInPrivilegedGroup {
		steps = append(steps, StepAddUserToGroup)
	}
	if d.WithPrivilegedSudo {
		steps = append(steps, StepWriteSudoers)
	}

	steps = append(steps, StepEnsureTree, StepReplacePayload)

	if d.WithLogRotation {
		steps = append(steps, StepResetLogDir)
	}
	steps = append(steps, StepWriteUnitFile)
	if d.WithLogRotation {
		steps = append(steps, StepWriteLogrotatePolicy)
	}

	return append(steps, StepDaemonReload)
}

package converge

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/LeonArchie/eosctl/internal/hoststate"
	"github.com/LeonArchie/eosctl/internal/systemd"
	"github.com/LeonArchie/eosctl/internal/usermgr"
)

// MutationError reports a failed host mutation. It is fatal: the
// remaining steps are not attempted and no rollback of prior steps is
// performed, because each step is independently safe to re-apply on the
// next run.
type MutationError struct {
	Step Step
	Err  error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("converge: %s: %v", e.Step, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }

// Engine applies convergence plans against the host.
type Engine struct {
	desired Desired
	users   usermgr.Manager
	systemd systemd.Controller
	fs      HostFS
	logger  *slog.Logger
}

// NewEngine creates an Engine for the given desired state, with
// defaults applied.
func NewEngine(desired Desired, users usermgr.Manager, ctl systemd.Controller, fs HostFS, logger *slog.Logger) *Engine {
	desired.ApplyDefaults()
	return &Engine{
		desired: desired,
		users:   users,
		systemd: ctl,
		fs:      fs,
		logger:  logger.With("component", "converge"),
	}
}

// Converge plans against the inspected current state and applies the
// steps sequentially, aborting on the first failure.
func (e *Engine) Converge(current hoststate.State) error {
	if err := e.desired.Validate(); err != nil {
		return err
	}

	if current.UserExists {
		e.logger.Info("user already exists, account left untouched", "user", e.desired.RunAsUser)
	}
	if current.UserInPrivilegedGroup {
		e.logger.Info("privileged group membership already present", "user", e.desired.RunAsUser, "group", e.desired.PrivilegedGroup)
	}

	steps := Plan(e.desired, current)
	for _, step := range steps {
		e.logger.Info("applying step", "step", step.String())
		if err := e.apply(step); err != nil {
			return &MutationError{Step: step, Err: err}
		}
	}
	e.logger.Info("convergence complete", "steps", len(steps))
	return nil
}

func (e *Engine) apply(step Step) error {
	d := e.desired
	switch step {
	case StepStopService:
		return e.systemd.Stop(d.ServiceName)

	case StepCreateUser:
		if err := e.users.Create(d.RunAsUser); err != nil {
			return err
		}
		return e.users.SetCredential(d.RunAsUser, d.Credential)

	case StepAddUserToGroup:
		return e.users.AddToGroup(d.RunAsUser, d.PrivilegedGroup)

	case StepWriteSudoers:
		return e.fs.WriteFile(d.SudoersPath, []byte(GenerateSudoersDropIn(d.RunAsUser)), 0o440)

	case StepEnsureTree:
		return e.fs.EnsureTree(d.InstallRoot, d.RunAsUser, d.TreeMode)

	case StepReplacePayload:
		return e.fs.ReplacePayload(d.AppDir, d.BundleDir, d.RunAsUser, d.TreeMode)

	case StepResetLogDir:
		return e.fs.ResetLogDir(d.LogDir, d.RunAsUser)

	case StepWriteUnitFile:
		return e.fs.WriteFile(d.UnitFilePath, []byte(GenerateUnitFile(d.Unit())), 0o644)

	case StepWriteLogrotatePolicy:
		return e.fs.WriteFile(d.LogrotatePath, []byte(GenerateLogrotatePolicy(d.Rotation())), 0o644)

	case StepDaemonReload:
		return e.systemd.DaemonReload()

	default:
		return fmt.Errorf("unknown step %d", step)
	}
}

// Teardown removes the provisioned service from the host: stop,
// disable, remove the unit file and the variant drop-ins, reload the
// unit cache. With purge, the install root and log directory are
// removed as well. A host the service was never provisioned on is a
// no-op, not an error.
func (e *Engine) Teardown(purge bool) error {
	d := e.desired

	if _, err := os.Stat(d.UnitFilePath); errors.Is(err, os.ErrNotExist) {
		e.logger.Info("service not installed, nothing to do", "service", d.ServiceName)
		return nil
	}

	// Stop and disable may fail on a unit that never started; that is
	// not fatal to removal.
	if err := e.systemd.Stop(d.ServiceName); err != nil {
		e.logger.Info("stop service", "error", err)
	}
	if err := e.systemd.Disable(d.ServiceName); err != nil {
		e.logger.Info("disable service", "error", err)
	}

	for _, path := range []string{d.UnitFilePath, d.LogrotatePath, d.SudoersPath} {
		if path == "" {
			continue
		}
		if err := e.fs.Remove(path); err != nil {
			return err
		}
		e.logger.Info("file removed", "path", path)
	}

	if err := e.systemd.DaemonReload(); err != nil {
		return err
	}

	if purge {
		for _, dir := range []string{d.InstallRoot, d.LogDir} {
			if dir == "" {
				continue
			}
			if err := e.fs.RemoveAll(dir); err != nil {
				return err
			}
			e.logger.Info("directory removed", "path", dir)
		}
	}

	return nil
}

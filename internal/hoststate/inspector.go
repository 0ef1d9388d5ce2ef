// Package hoststate inspects the host without mutating it. Every probe
// returns a negative result, never an error, when the underlying
// resource does not exist; the convergence engine re-derives all of its
// decisions from these probes on every run.
package hoststate

import (
	"log/slog"
	"os"
	"os/user"
	"strconv"

	"golang.org/x/sys/unix"

	"github.com/LeonArchie/eosctl/internal/systemd"
)

// State is the ephemeral host-state record, recomputed at the start of
// every run. It is never persisted.
type State struct {
	UserExists            bool
	UserInPrivilegedGroup bool
	ServiceRegistered     bool
	ServiceActive         bool
	AppDirExists          bool
	AppDirOwner           string
}

// Query names the resources a Collect call probes.
type Query struct {
	User            string
	PrivilegedGroup string
	Service         string
	UnitFilePath    string
	AppDir          string
}

// Inspector performs read-only host-state probes.
type Inspector struct {
	systemd systemd.Controller
	logger  *slog.Logger
}

// NewInspector creates an Inspector using the given systemd controller.
func NewInspector(ctl systemd.Controller, logger *slog.Logger) *Inspector {
	return &Inspector{
		systemd: ctl,
		logger:  logger.With("component", "hoststate"),
	}
}

// Collect assembles a full State record from fresh probes.
func (in *Inspector) Collect(q Query) State {
	st := State{
		UserExists:            in.UserExists(q.User),
		UserInPrivilegedGroup: in.UserInGroup(q.User, q.PrivilegedGroup),
		ServiceRegistered:     in.ServiceRegistered(q.Service, q.UnitFilePath),
		ServiceActive:         in.ServiceActive(q.Service),
		AppDirExists:          in.DirExists(q.AppDir),
	}
	if st.AppDirExists {
		st.AppDirOwner = in.DirOwner(q.AppDir)
	}
	in.logger.Info("host state collected",
		"user_exists", st.UserExists,
		"user_in_privileged_group", st.UserInPrivilegedGroup,
		"service_registered", st.ServiceRegistered,
		"service_active", st.ServiceActive,
		"app_dir_exists", st.AppDirExists,
		"app_dir_owner", st.AppDirOwner,
	)
	return st
}

// UserExists reports whether a system account with the given name exists.
func (in *Inspector) UserExists(name string) bool {
	if name == "" {
		return false
	}
	_, err := user.Lookup(name)
	return err == nil
}

// UserInGroup reports whether the named account is a member of the
// named group. Absent users or groups yield false.
func (in *Inspector) UserInGroup(name, group string) bool {
	if name == "" || group == "" {
		return false
	}
	u, err := user.Lookup(name)
	if err != nil {
		return false
	}
	g, err := user.LookupGroup(group)
	if err != nil {
		return false
	}
	gids, err := u.GroupIds()
	if err != nil {
		return false
	}
	for _, gid := range gids {
		if gid == g.Gid {
			return true
		}
	}
	return false
}

// ServiceRegistered reports whether the service unit is known to the
// service manager, either through its unit file on disk or through an
// enabled registration.
func (in *Inspector) ServiceRegistered(service, unitFilePath string) bool {
	if unitFilePath != "" {
		if info, err := os.Stat(unitFilePath); err == nil && !info.IsDir() {
			return true
		}
	}
	if service == "" {
		return false
	}
	return in.systemd.IsEnabled(service)
}

// ServiceActive reports whether the service is currently running.
func (in *Inspector) ServiceActive(service string) bool {
	if service == "" {
		return false
	}
	return in.systemd.IsActive(service)
}

// DirExists reports whether path exists and is a directory.
func (in *Inspector) DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// DirOwner returns the account name owning path, the numeric UID when
// the account has no name, or "" when path does not exist.
func (in *Inspector) DirOwner(path string) string {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return ""
	}
	uid := strconv.FormatUint(uint64(st.Uid), 10)
	if u, err := user.LookupId(uid); err == nil {
		return u.Username
	}
	return uid
}

// Package systemd wraps service-manager control invocations behind a
// controller interface so the convergence and registration logic can be
// tested against doubles.
package systemd

// Controller abstracts systemd service management. All methods that
// modify state must be idempotent: repeating an operation that is
// already applied returns nil.
type Controller interface {
	// IsAvailable returns true if systemctl is available on the system.
	IsAvailable() bool

	// DaemonReload executes systemctl daemon-reload to pick up unit
	// file changes.
	DaemonReload() error

	// Enable enables the named service to start on boot.
	Enable(service string) error

	// Disable disables the named service from starting on boot.
	Disable(service string) error

	// Start starts the named service.
	Start(service string) error

	// Stop stops the named service. Returns nil if it is not running.
	Stop(service string) error

	// IsActive returns true if the named service is currently running.
	IsActive(service string) bool

	// IsEnabled returns true if the named service is enabled for boot.
	IsEnabled(service string) bool

	// Status returns the human-readable status text for the named
	// service. A non-running service is not an error; the status text
	// describing it is returned.
	Status(service string) (string, error)
}

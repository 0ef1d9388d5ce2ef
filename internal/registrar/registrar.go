// Package registrar activates the provisioned service and reports its
// final status to the operator.
package registrar

import (
	"fmt"
	"log/slog"

	"github.com/LeonArchie/eosctl/internal/systemd"
)

// Registrar enables and starts the service unit.
type Registrar struct {
	systemd systemd.Controller
	logger  *slog.Logger
}

// New creates a Registrar using the given systemd controller.
func New(ctl systemd.Controller, logger *slog.Logger) *Registrar {
	return &Registrar{
		systemd: ctl,
		logger:  logger.With("component", "registrar"),
	}
}

// Register enables the service for start-on-boot, starts it with a
// single attempt, and returns the status text. A service that is not
// active afterwards is reported through the status text for the
// operator to diagnose; Register does not retry.
func (r *Registrar) Register(service string) (string, error) {
	if err := r.systemd.Enable(service); err != nil {
		return "", fmt.Errorf("registrar: enable %s: %w", service, err)
	}
	r.logger.Info("service enabled", "service", service)

	if err := r.systemd.Start(service); err != nil {
		return "", fmt.Errorf("registrar: start %s: %w", service, err)
	}
	r.logger.Info("service started", "service", service)

	status, err := r.systemd.Status(service)
	if err != nil {
		return "", fmt.Errorf("registrar: status %s: %w", service, err)
	}
	r.logger.Info("service status collected", "service", service, "active", r.systemd.IsActive(service))
	return status, nil
}

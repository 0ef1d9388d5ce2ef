package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/LeonArchie/eosctl/internal/converge"
	"github.com/LeonArchie/eosctl/internal/declare"
	"github.com/LeonArchie/eosctl/internal/hoststate"
	"github.com/LeonArchie/eosctl/internal/pkgmgr"
	"github.com/LeonArchie/eosctl/internal/preflight"
	"github.com/LeonArchie/eosctl/internal/profile"
	"github.com/LeonArchie/eosctl/internal/registrar"
	"github.com/LeonArchie/eosctl/internal/systemd"
	"github.com/LeonArchie/eosctl/internal/usermgr"
)

var (
	provisionDeclaration string
	provisionBundle      string
	provisionManifest    string
	provisionWithSudo    bool
	provisionWithLogrot  bool
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Converge the host to run the EOS application service",
	RunE:  runProvision,
}

func init() {
	provisionCmd.Flags().StringVar(&provisionDeclaration, "declaration", "/etc/eosctl/app.conf", "KEY=VALUE declaration file")
	provisionCmd.Flags().StringVar(&provisionBundle, "bundle", "", "application bundle directory (required)")
	provisionCmd.Flags().StringVar(&provisionManifest, "manifest", "/etc/eosctl/requirements.txt", "dependency manifest (package==version per line)")
	provisionCmd.Flags().BoolVar(&provisionWithSudo, "with-sudoers", false, "grant the service account passwordless sudo via a drop-in")
	provisionCmd.Flags().BoolVar(&provisionWithLogrot, "with-logrotate", false, "manage the log directory and a log-rotation policy")
	_ = provisionCmd.MarkFlagRequired("bundle")
	rootCmd.AddCommand(provisionCmd)
}

func runProvision(cmd *cobra.Command, _ []string) error {
	logger := setupLogger(logLevel)

	prof, err := profile.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("eosctl provision: %w", err)
	}
	if cmd.Flags().Changed("with-sudoers") {
		prof.WithPrivilegedSudo = provisionWithSudo
	}
	if cmd.Flags().Changed("with-logrotate") {
		prof.WithLogRotation = provisionWithLogrot
	}

	// Preflight: privilege first, then required paths. Nothing is
	// mutated until every check passes.
	checklist := preflight.Checklist{
		BundleDir:       provisionBundle,
		DeclarationFile: provisionDeclaration,
		ManifestFile:    provisionManifest,
	}
	if _, err := preflight.Run(preflight.NewPrivilegeChecker(), checklist, logger); err != nil {
		return fmt.Errorf("eosctl provision: %w", err)
	}

	pc, err := declare.Load(provisionDeclaration)
	if err != nil {
		return fmt.Errorf("eosctl provision: %w", err)
	}
	pc.ApplyRoot(prof.InstallRoot)
	logger.Info("declaration loaded", "service", pc.ServiceName, "user", pc.RunAsUser)

	ctl := systemd.NewController()
	if !ctl.IsAvailable() {
		return errors.New("eosctl provision: systemctl is not available on this host")
	}

	desired := buildDesired(pc, prof, provisionBundle)

	inspector := hoststate.NewInspector(ctl, logger)
	current := inspector.Collect(hoststate.Query{
		User:            desired.RunAsUser,
		PrivilegedGroup: desired.PrivilegedGroup,
		Service:         desired.ServiceName,
		UnitFilePath:    desired.UnitFilePath,
		AppDir:          desired.AppDir,
	})

	// Dependencies are installed before any convergence: the service
	// cannot start without them and nothing on the host has been
	// mutated yet if this fails.
	pkgs, err := pkgmgr.LoadManifest(provisionManifest)
	if err != nil {
		return fmt.Errorf("eosctl provision: %w", err)
	}
	installer := pkgmgr.NewInstaller(prof.PipCommand, logger)
	if err := installer.Install(context.Background(), pkgs); err != nil {
		return fmt.Errorf("eosctl provision: %w", err)
	}

	engine := converge.NewEngine(desired, usermgr.NewManager(logger), ctl, converge.NewHostFS(), logger)
	if err := engine.Converge(current); err != nil {
		return fmt.Errorf("eosctl provision: %w", err)
	}

	status, err := registrar.New(ctl, logger).Register(desired.ServiceName)
	if err != nil {
		return fmt.Errorf("eosctl provision: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), status)
	fmt.Fprintf(cmd.OutOrStdout(), "\n%s provisioned successfully\n", desired.ServiceName)
	return nil
}

// buildDesired assembles the convergence target from the loaded
// declaration and the profile.
func buildDesired(pc *declare.ProvisioningConfig, prof profile.Config, bundleDir string) converge.Desired {
	d := converge.Desired{
		ServiceName:        pc.ServiceName,
		RunAsUser:          pc.RunAsUser,
		Credential:         pc.Credential,
		PrivilegedGroup:    prof.PrivilegedGroup,
		InstallRoot:        pc.InstallRoot,
		AppDir:             pc.AppDir,
		BundleDir:          bundleDir,
		LogDir:             pc.LogDir,
		UnitFilePath:       filepath.Join(prof.UnitDir, pc.ServiceName+".service"),
		LogrotatePath:      filepath.Join(prof.LogrotateDir, pc.ServiceName),
		SudoersPath:        filepath.Join(prof.SudoersDir, pc.RunAsUser),
		EntryCommand:       prof.EntryCommand,
		Environment:        prof.Environment,
		WithPrivilegedSudo: prof.WithPrivilegedSudo,
		WithLogRotation:    prof.WithLogRotation,
	}
	d.ApplyDefaults()
	return d
}

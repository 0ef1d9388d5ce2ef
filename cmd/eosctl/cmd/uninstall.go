package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LeonArchie/eosctl/internal/converge"
	"github.com/LeonArchie/eosctl/internal/declare"
	"github.com/LeonArchie/eosctl/internal/preflight"
	"github.com/LeonArchie/eosctl/internal/profile"
	"github.com/LeonArchie/eosctl/internal/systemd"
	"github.com/LeonArchie/eosctl/internal/usermgr"
)

var (
	uninstallDeclaration string
	uninstallPurge       bool
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the provisioned service from the host",
	RunE:  runUninstall,
}

func init() {
	uninstallCmd.Flags().StringVar(&uninstallDeclaration, "declaration", "/etc/eosctl/app.conf", "KEY=VALUE declaration file")
	uninstallCmd.Flags().BoolVar(&uninstallPurge, "purge", false, "also remove the install root and log directory")
	rootCmd.AddCommand(uninstallCmd)
}

func runUninstall(cmd *cobra.Command, _ []string) error {
	logger := setupLogger(logLevel)

	if !preflight.NewPrivilegeChecker().IsPrivileged() {
		return errors.New("eosctl uninstall: uninstall requires root privileges")
	}

	prof, err := profile.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("eosctl uninstall: %w", err)
	}

	pc, err := declare.Load(uninstallDeclaration)
	if err != nil {
		return fmt.Errorf("eosctl uninstall: %w", err)
	}
	pc.ApplyRoot(prof.InstallRoot)

	desired := buildDesired(pc, prof, "-")
	engine := converge.NewEngine(desired, usermgr.NewManager(logger), systemd.NewController(), converge.NewHostFS(), logger)

	if err := engine.Teardown(uninstallPurge); err != nil {
		return fmt.Errorf("eosctl uninstall: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s uninstalled\n", desired.ServiceName)
	return nil
}

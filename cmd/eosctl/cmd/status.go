package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LeonArchie/eosctl/internal/declare"
	"github.com/LeonArchie/eosctl/internal/hoststate"
	"github.com/LeonArchie/eosctl/internal/profile"
	"github.com/LeonArchie/eosctl/internal/systemd"
)

var statusDeclaration string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report the inspected host state without mutating anything",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusDeclaration, "declaration", "/etc/eosctl/app.conf", "KEY=VALUE declaration file")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	logger := setupLogger(logLevel)

	prof, err := profile.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("eosctl status: %w", err)
	}

	pc, err := declare.Load(statusDeclaration)
	if err != nil {
		return fmt.Errorf("eosctl status: %w", err)
	}
	pc.ApplyRoot(prof.InstallRoot)

	desired := buildDesired(pc, prof, "-")
	inspector := hoststate.NewInspector(systemd.NewController(), logger)
	state := inspector.Collect(hoststate.Query{
		User:            desired.RunAsUser,
		PrivilegedGroup: desired.PrivilegedGroup,
		Service:         desired.ServiceName,
		UnitFilePath:    desired.UnitFilePath,
		AppDir:          desired.AppDir,
	})

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Service:            %s\n", desired.ServiceName)
	fmt.Fprintf(w, "User exists:        %t\n", state.UserExists)
	fmt.Fprintf(w, "Privileged group:   %t\n", state.UserInPrivilegedGroup)
	fmt.Fprintf(w, "Service registered: %t\n", state.ServiceRegistered)
	fmt.Fprintf(w, "Service active:     %t\n", state.ServiceActive)
	fmt.Fprintf(w, "App dir exists:     %t\n", state.AppDirExists)
	if state.AppDirExists {
		fmt.Fprintf(w, "App dir owner:      %s\n", state.AppDirOwner)
	}
	return nil
}

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	projectDir  string
	outputJSON  bool
	plainOutput bool
)

// Execute runs the root cobra command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "droidprep",
		Short: "Android build environment provisioner",
		Long: "droidprep sets up everything an Android packaging run needs: a working JDK,\n" +
			"the Android SDK command-line tools and packages, and the signing keys plus\n" +
			"property files that persist the configuration. Re-running is always safe.",
	}

	cmd.PersistentFlags().StringVar(&projectDir, "project", "", "Path to project directory")
	cmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output machine-readable JSON")
	cmd.PersistentFlags().BoolVar(&plainOutput, "plain", false, "Disable animated progress output")

	viper.BindPFlag("project", cmd.PersistentFlags().Lookup("project"))
	viper.BindPFlag("plain", cmd.PersistentFlags().Lookup("plain"))
	viper.SetEnvPrefix("DROIDPREP")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	cmd.AddCommand(newInstallCmd())
	cmd.AddCommand(newDoctorCmd())
	cmd.AddCommand(newSdkCmd())
	cmd.AddCommand(newKeysCmd())

	return cmd
}

package cli

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"droidprep/internal/provision"
	"droidprep/internal/sdk"
)

var acceptTerms bool

func newInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Provision the full Android build environment",
		Long: "Runs the complete provisioning sequence: project skeleton, JDK check, SDK\n" +
			"download and unpack, SDK packages, signing keys, and the sdk.dir property\n" +
			"entries. Already-provisioned steps are skipped.",
		RunE: runInstall,
	}

	cmd.Flags().BoolVar(&acceptTerms, "accept-terms", false,
		"Skip the Android SDK terms-of-service prompt (same as DROIDPREP_NO_TERMS)")

	return cmd
}

func runInstall(cmd *cobra.Command, _ []string) error {
	env, err := newEnvironment()
	if err != nil {
		return err
	}
	defer env.Close()

	if acceptTerms || viper.GetBool("no-terms") {
		os.Setenv(sdk.EnvNoTerms, "1")
	}

	env.Log.WithField("project", env.Paths.Root).Info("install started")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	orch := &provision.Orchestrator{
		Paths:  env.Paths,
		Config: env.Config,
		UI:     env.UI,
		Runner: env.Runner,
		Log:    env.Log,
	}
	if err := orch.Run(ctx); err != nil {
		env.Log.WithError(err).Error("install failed")
		return err
	}

	env.Log.Info("install finished")
	return nil
}

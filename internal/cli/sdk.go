package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"droidprep/internal/sdk"
)

func newSdkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sdk",
		Short: "Manage the Android SDK",
	}

	cmd.AddCommand(newSdkUnpackCmd())
	cmd.AddCommand(newSdkPackagesCmd())

	return cmd
}

func newSdkUnpackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unpack",
		Short: "Download and unpack the SDK command-line tools",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSdkProvisioner(cmd, func(ctx context.Context, prov *sdk.Provisioner) error {
				return prov.Unpack(ctx)
			})
		},
	}
}

func newSdkPackagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "packages",
		Short: "Install missing SDK packages",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSdkProvisioner(cmd, func(ctx context.Context, prov *sdk.Provisioner) error {
				return prov.EnsurePackages(ctx)
			})
		},
	}
}

func withSdkProvisioner(cmd *cobra.Command, fn func(ctx context.Context, prov *sdk.Provisioner) error) error {
	env, err := newEnvironment()
	if err != nil {
		return err
	}
	defer env.Close()

	if viper.GetBool("no-terms") {
		os.Setenv(sdk.EnvNoTerms, "1")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	prov := &sdk.Provisioner{
		Paths:  env.Paths,
		Config: env.Config,
		UI:     env.UI,
		Runner: env.Runner,
		Log:    env.Log,
	}
	return fn(ctx, prov)
}

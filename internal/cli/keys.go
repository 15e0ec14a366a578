package cli

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"droidprep/internal/keys"
)

var bundleKey bool

func newKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage signing keys",
	}

	cmd.AddCommand(newKeysGenerateCmd())

	return cmd
}

func newKeysGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Ensure a signing key and its property entries exist",
		Long: "Seeds the property file with default alias and passwords, then creates the\n" +
			"keystore if it does not exist yet. An existing keystore is never touched.",
		RunE: runKeysGenerate,
	}

	cmd.Flags().BoolVar(&bundleKey, "bundle", false, "Provision the bundle key instead of the release key")

	return cmd
}

func runKeysGenerate(cmd *cobra.Command, _ []string) error {
	env, err := newEnvironment()
	if err != nil {
		return err
	}
	defer env.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	prov := &keys.Provisioner{
		Paths:  env.Paths,
		Config: env.Config,
		UI:     env.UI,
		Runner: env.Runner,
		Log:    env.Log,
	}

	if bundleKey {
		return prov.EnsureBundleKey(ctx)
	}
	return prov.EnsureReleaseKey(ctx)
}

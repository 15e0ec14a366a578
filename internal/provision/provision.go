// Package provision sequences the full environment setup: project skeleton,
// JDK check, SDK unpack and packages, signing keys, and the persisted
// sdk.dir entries. The sequence is strictly ordered with no parallelism and
// aborts on the first fatal error.
//
// A run is idempotent and safe to re-invoke, but two concurrent runs on the
// same project directory are unsupported: there is no cross-process lock.
package provision

import (
	"context"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"droidprep/internal/config"
	"droidprep/internal/console"
	"droidprep/internal/execx"
	"droidprep/internal/jdk"
	"droidprep/internal/keys"
	"droidprep/internal/paths"
	"droidprep/internal/props"
	"droidprep/internal/sdk"
)

// Orchestrator wires the provisioning components together for one project.
type Orchestrator struct {
	Paths  paths.ProjectPaths
	Config config.Config
	UI     console.UI
	Runner execx.Runner
	Log    logrus.FieldLogger
}

// Run executes the complete provisioning sequence.
func (o *Orchestrator) Run(ctx context.Context) error {
	if err := o.Paths.EnsureSkeleton(); err != nil {
		return err
	}

	validator := &jdk.Validator{Paths: o.Paths, Config: o.Config, UI: o.UI, Runner: o.Runner, Log: o.Log}
	if err := validator.Check(ctx); err != nil {
		return err
	}

	sdkProv := &sdk.Provisioner{Paths: o.Paths, Config: o.Config, UI: o.UI, Runner: o.Runner, Log: o.Log}
	if err := sdkProv.Unpack(ctx); err != nil {
		return err
	}
	if err := sdkProv.EnsurePackages(ctx); err != nil {
		return err
	}

	keyProv := &keys.Provisioner{Paths: o.Paths, Config: o.Config, UI: o.UI, Runner: o.Runner, Log: o.Log}
	if err := keyProv.EnsureReleaseKey(ctx); err != nil {
		return err
	}
	if err := keyProv.EnsureBundleKey(ctx); err != nil {
		return err
	}

	sdkDir := filepath.ToSlash(o.Paths.SdkRoot)
	if err := props.Set(o.Paths.LocalProperties, "sdk.dir", sdkDir, true); err != nil {
		return err
	}
	if err := props.Set(o.Paths.BundleProperties, "sdk.dir", sdkDir, true); err != nil {
		return err
	}

	o.UI.FinalSuccess("It looks like you're ready to start packaging applications.")
	return nil
}

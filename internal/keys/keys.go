// Package keys guarantees that signing keys and their property entries
// exist, without ever regenerating or overwriting a key the user already
// has.
package keys

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"

	"droidprep/internal/config"
	"droidprep/internal/console"
	"droidprep/internal/execx"
	"droidprep/internal/paths"
	"droidprep/internal/platform"
	"droidprep/internal/props"
)

// Provisioner ensures the release and bundle signing keys for one project.
type Provisioner struct {
	Paths  paths.ProjectPaths
	Config config.Config
	UI     console.UI
	Runner execx.Runner
	Log    logrus.FieldLogger
}

// keySet describes one keystore plus the property file that owns it.
type keySet struct {
	properties  string
	keystore    string
	interactive bool
}

// EnsureReleaseKey provisions the primary application signing key. The user
// is asked before a key is created; declining skips key creation without
// failing the run.
func (p *Provisioner) EnsureReleaseKey(ctx context.Context) error {
	return p.ensure(ctx, keySet{
		properties:  p.Paths.LocalProperties,
		keystore:    p.Paths.Keystore,
		interactive: true,
	})
}

// EnsureBundleKey provisions the bundle signing key silently: no prompts,
// no success message, always generated when absent.
func (p *Provisioner) EnsureBundleKey(ctx context.Context) error {
	return p.ensure(ctx, keySet{
		properties:  p.Paths.BundleProperties,
		keystore:    p.Paths.BundleKeystore,
		interactive: false,
	})
}

func (p *Provisioner) ensure(ctx context.Context, set keySet) error {
	k := p.Config.Keys

	// Seed defaults without clobbering anything the user configured.
	seeds := []struct{ key, value string }{
		{"key.alias", k.Alias},
		{"key.store.password", k.StorePassword},
		{"key.alias.password", k.KeyPassword},
	}
	for _, s := range seeds {
		if err := props.Set(set.properties, s.key, s.value, false); err != nil {
			return err
		}
	}

	defaultStore := filepath.ToSlash(set.keystore)
	if err := props.Set(set.properties, "key.store", defaultStore, false); err != nil {
		return err
	}

	stored, _, err := props.Get(set.properties, "key.store")
	if err != nil {
		return err
	}
	if stored != defaultStore {
		// A prior run or the user pointed key.store somewhere else.
		if set.interactive {
			p.UI.Info("You set the keystore yourself, so I'll assume it's how you want it.")
		}
		p.Log.WithField("key.store", stored).Info("keystore path customized; skipping key creation")
		return nil
	}

	if exists, err := paths.FileExists(set.keystore); err != nil {
		return fmt.Errorf("stat keystore: %w", err)
	} else if exists {
		if set.interactive {
			p.UI.Info("You've already created a signing key, so I won't create a new one for you.")
		}
		return nil
	}

	organization := k.BundleOrganization
	if set.interactive {
		if !p.UI.YesNo("I can create an application signing key for you. Signing an application with this key allows it " +
			"to be placed in app stores.\n\nDo you want to create a key?") {
			return nil
		}
		if !p.UI.YesNo("I will create the key in the android.keystore file.\n\nYou need to back this file up. If you lose it, " +
			"you will not be able to upgrade your application.\n\nYou also need to keep the key safe. If evil people get this " +
			"file, they could make fake versions of your application, and potentially steal your users' data.\n\nWill you make " +
			"a backup of android.keystore, and keep it in a safe place?") {
			return nil
		}
		organization, err = p.UI.Input("Please enter your name or the name of your organization.")
		if err != nil {
			return err
		}
	}

	if err := p.generate(ctx, set.keystore, "CN="+organization); err != nil {
		return err
	}

	if set.interactive {
		p.UI.Success("Finished creating android.keystore. Please back it up, and keep it in a safe place.")
	}
	return nil
}

func (p *Provisioner) generate(ctx context.Context, keystore, dname string) error {
	k := p.Config.Keys
	args := []string{
		"-genkey",
		"-keystore", keystore,
		"-alias", k.Alias,
		"-keyalg", k.Algorithm,
		"-keysize", strconv.Itoa(k.SizeBits),
		"-keypass", k.KeyPassword,
		"-storepass", k.StorePassword,
		"-dname", dname,
		"-validity", strconv.Itoa(k.ValidityDays),
	}

	p.Log.WithField("keystore", keystore).Info("generating signing key")

	keytool := platform.JavaTool("keytool")
	if _, err := p.Runner.Run(ctx, keytool, args, execx.RunOptions{Dir: p.Paths.Root}); err != nil {
		return fmt.Errorf("create %s (is keytool on your PATH?): %w", filepath.Base(keystore), err)
	}
	return nil
}

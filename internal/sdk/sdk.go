// Package sdk provisions the Android SDK: archive download, extraction with
// preserved permissions, cmdline-tools layout normalization, and package
// installation. All steps are idempotent; re-running against a provisioned
// SDK performs no downloads or installs.
package sdk

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"droidprep/internal/config"
	"droidprep/internal/console"
	"droidprep/internal/execx"
	"droidprep/internal/paths"
	"droidprep/internal/platform"
)

// EnvNoTerms suppresses the terms-of-service prompt when set to any value.
const EnvNoTerms = "DROIDPREP_NO_TERMS"

// Provisioner drives SDK installation for one project.
type Provisioner struct {
	Paths  paths.ProjectPaths
	Config config.Config
	UI     console.UI
	Runner execx.Runner
	Log    logrus.FieldLogger
}

// Unpack downloads and extracts the command-line tools archive unless the
// SDK manager is already present. Download failure, extraction failure, and
// declined terms are all fatal.
func (p *Provisioner) Unpack(ctx context.Context) error {
	manager := p.Paths.SdkManager()
	if ok, err := paths.FileExists(manager); err != nil {
		return fmt.Errorf("stat sdkmanager: %w", err)
	} else if ok {
		p.UI.Success("The Android SDK has already been unpacked.")
		return nil
	}

	if _, optOut := os.LookupEnv(EnvNoTerms); !optOut {
		if err := p.UI.Terms(p.Config.SDK.TermsURL, "Do you accept the Android SDK Terms and Conditions?"); err != nil {
			return err
		}
	}

	archive := platform.CommandLineToolsArchive(p.Config.SDK.ToolsVersion)
	url := strings.TrimSuffix(p.Config.SDK.RepositoryURL, "/") + "/" + archive
	archivePath := filepath.Join(p.Paths.DownloadsDir, archive)

	p.UI.Info("Downloading the Android SDK. This might take a while.")
	p.Log.WithField("url", url).Info("downloading command-line tools")

	err := p.UI.Background(ctx, "Downloading "+archive, func(ctx context.Context) error {
		return downloadArtifact(ctx, archivePath, url)
	})
	if err != nil {
		return fmt.Errorf("download Android SDK from %s: %w", url, err)
	}

	p.UI.Info("Extracting the Android SDK.")

	err = p.UI.Background(ctx, "Extracting "+archive, func(ctx context.Context) error {
		return p.unpackArchive(ctx, archivePath)
	})
	if err != nil {
		return fmt.Errorf("extract Android SDK: %w", err)
	}

	p.UI.Success("Finished unpacking the Android SDK.")
	return nil
}

// unpackArchive extracts the archive into the SDK root and normalizes the
// cmdline-tools layout. Stale directories from an interrupted earlier run
// are removed first, so cancellation mid-way is always re-done from scratch
// and never mistaken for a completed unpack.
func (p *Provisioner) unpackArchive(ctx context.Context, archivePath string) error {
	root := p.Paths.SdkRoot
	for _, stale := range []string{filepath.Join(root, "cmdline-tools"), filepath.Join(root, "latest")} {
		if err := os.RemoveAll(stale); err != nil {
			return fmt.Errorf("remove stale %s: %w", stale, err)
		}
	}

	if err := extractZip(ctx, archivePath, root); err != nil {
		return err
	}
	return normalizeLayout(ctx, root)
}

// normalizeLayout relocates the archive's single cmdline-tools directory one
// level deeper under a literal "latest" directory. sdkmanager refuses to run
// from the layout the archive unpacks to.
func normalizeLayout(ctx context.Context, root string) error {
	extracted := filepath.Join(root, "cmdline-tools")
	latest := filepath.Join(root, "latest")

	if err := os.Rename(extracted, latest); err != nil {
		return fmt.Errorf("stage cmdline-tools: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Mkdir(extracted, 0o755); err != nil {
		return fmt.Errorf("recreate cmdline-tools: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Rename(latest, filepath.Join(extracted, "latest")); err != nil {
		return fmt.Errorf("nest cmdline-tools/latest: %w", err)
	}
	return nil
}

// MissingPackages returns the wanted package ids whose directories do not
// exist under the SDK root. The check is recomputed from disk on every call.
func (p *Provisioner) MissingPackages() ([]string, error) {
	var missing []string
	for _, pkg := range p.Config.SDK.Packages {
		dir := filepath.Join(p.Paths.SdkRoot, filepath.FromSlash(pkg.Path))
		ok, err := paths.DirExists(dir)
		if err != nil {
			return nil, fmt.Errorf("stat package %s: %w", pkg.ID, err)
		}
		if !ok {
			missing = append(missing, pkg.ID)
		}
	}
	return missing, nil
}

// EnsurePackages installs any missing wanted packages in a single
// sdkmanager invocation, after updating its metadata and accepting all
// licenses. Any of the three steps failing is fatal.
func (p *Provisioner) EnsurePackages(ctx context.Context) error {
	missing, err := p.MissingPackages()
	if err != nil {
		return err
	}
	if len(missing) == 0 {
		p.UI.Success("The required Android packages are already installed.")
		return nil
	}

	p.UI.Info("Downloading and installing the required Android packages. This might take a while.")
	p.Log.WithField("packages", missing).Info("installing SDK packages")

	manager := p.Paths.SdkManager()

	err = p.UI.Background(ctx, "Updating SDK metadata", func(ctx context.Context) error {
		_, err := p.Runner.Run(ctx, manager, []string{"--update"}, execx.RunOptions{AutoYes: true})
		return err
	})
	if err != nil {
		return fmt.Errorf("update the Android SDK metadata: %w", err)
	}

	err = p.UI.Background(ctx, "Accepting licenses", func(ctx context.Context) error {
		_, err := p.Runner.Run(ctx, manager, []string{"--licenses"}, execx.RunOptions{AutoYes: true})
		return err
	})
	if err != nil {
		return fmt.Errorf("accept the Android licenses: %w", err)
	}

	err = p.UI.Background(ctx, "Installing "+strings.Join(missing, ", "), func(ctx context.Context) error {
		_, err := p.Runner.Run(ctx, manager, missing, execx.RunOptions{AutoYes: true})
		return err
	})
	if err != nil {
		return fmt.Errorf("install the required Android packages: %w", err)
	}

	p.UI.Success("Finished installing the required Android packages.")
	return nil
}

// downloadArtifact streams url into dest through a temp file, renaming into
// place only once the body has been fully written.
func downloadArtifact(ctx context.Context, dest, url string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("prepare download destination: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "droidprep/1.0")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("download %s: unexpected status %s", url, resp.Status)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(dest), "download-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		tmpFile.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("finalize download: %w", err)
	}
	return nil
}

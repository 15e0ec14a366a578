package paths

import (
	"fmt"
	"os"
	"path/filepath"

	"droidprep/internal/config"
	"droidprep/internal/platform"
)

// ProjectPaths captures canonical locations for a droidprep project.
type ProjectPaths struct {
	Root             string
	ConfigFile       string
	ProjectDir       string
	LocalProperties  string
	BundleProperties string
	Keystore         string
	BundleKeystore   string
	SdkRoot          string
	MetaDir          string
	DownloadsDir     string
	LogsDir          string
}

// Resolve determines the project root using the optional --project flag or
// the current working directory when the flag is empty.
func Resolve(projectFlag string) (ProjectPaths, error) {
	var (
		root string
		err  error
	)

	if projectFlag != "" {
		root, err = filepath.Abs(projectFlag)
	} else {
		root, err = os.Getwd()
	}
	if err != nil {
		return ProjectPaths{}, fmt.Errorf("resolve project root: %w", err)
	}

	return newProjectPaths(root), nil
}

func newProjectPaths(root string) ProjectPaths {
	metaDir := filepath.Join(root, ".droidprep")
	projectDir := filepath.Join(root, "project")
	return ProjectPaths{
		Root:             root,
		ConfigFile:       filepath.Join(root, "droidprep.yaml"),
		ProjectDir:       projectDir,
		LocalProperties:  filepath.Join(projectDir, "local.properties"),
		BundleProperties: filepath.Join(projectDir, "bundle.properties"),
		Keystore:         filepath.Join(root, "android.keystore"),
		BundleKeystore:   filepath.Join(root, "bundle.keystore"),
		SdkRoot:          filepath.Join(root, "Sdk"),
		MetaDir:          metaDir,
		DownloadsDir:     filepath.Join(metaDir, "downloads"),
		LogsDir:          filepath.Join(root, "logs"),
	}
}

// ApplyConfig adjusts resolved paths using the loaded configuration. The SDK
// root moves to the per-user location when the project opts into a shared
// SDK, or to an explicit override.
func ApplyConfig(pp ProjectPaths, cfg config.Config) (ProjectPaths, error) {
	switch {
	case cfg.SDK.Root != "":
		if filepath.IsAbs(cfg.SDK.Root) {
			pp.SdkRoot = filepath.Clean(cfg.SDK.Root)
		} else {
			pp.SdkRoot = filepath.Join(pp.Root, cfg.SDK.Root)
		}
	case cfg.SDK.Shared:
		shared, err := platform.SharedSdkRoot()
		if err != nil {
			return pp, err
		}
		pp.SdkRoot = shared
	}
	return pp, nil
}

// SdkManager returns the SDK manager launcher path for the resolved SDK root.
func (p ProjectPaths) SdkManager() string {
	return platform.SdkManager(p.SdkRoot)
}

// EnsureSkeleton creates the project directory layout a provisioning run
// relies on.
func (p ProjectPaths) EnsureSkeleton() error {
	dirs := []string{p.Root, p.ProjectDir, p.MetaDir, p.DownloadsDir, p.LogsDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// DirExists reports whether a path exists and is a directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

package platform

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	homedir "github.com/mitchellh/go-homedir"
)

// Family identifies the host operating system family used when selecting
// command-line tools archives.
type Family string

const (
	Windows Family = "windows"
	Mac     Family = "mac"
	Linux   Family = "linux"
)

// HostFamily returns the OS family for the current process.
func HostFamily() Family {
	switch runtime.GOOS {
	case "windows":
		return Windows
	case "darwin":
		return Mac
	default:
		return Linux
	}
}

// ExecutableName appends the platform executable suffix when required.
func ExecutableName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}

// ScriptName appends the platform script suffix used by the SDK manager
// launcher scripts.
func ScriptName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".bat"
	}
	return base
}

// CommandLineToolsArchive returns the archive file name for the given
// command-line tools version on the current host.
func CommandLineToolsArchive(version string) string {
	return fmt.Sprintf("commandlinetools-%s-%s.zip", HostFamily(), version)
}

// SdkManager returns the path of the SDK manager launcher under the given
// SDK root. The launcher only exists once the archive has been unpacked and
// the cmdline-tools layout has been normalized.
func SdkManager(sdkRoot string) string {
	return filepath.Join(sdkRoot, "cmdline-tools", "latest", "bin", ScriptName("sdkmanager"))
}

// JavaTool resolves a JDK executable (javac, java, keytool). JAVA_HOME wins
// when it points at an existing binary; otherwise the bare name is returned
// for PATH resolution by the runner.
func JavaTool(name string) string {
	exe := ExecutableName(name)
	if home := os.Getenv("JAVA_HOME"); home != "" {
		candidate := filepath.Join(home, "bin", exe)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return exe
}

// LookupJavaTool resolves a JDK executable to an absolute path, reporting
// whether it could be found at all.
func LookupJavaTool(name string) (string, bool) {
	tool := JavaTool(name)
	if filepath.IsAbs(tool) {
		return tool, true
	}
	path, err := exec.LookPath(tool)
	if err != nil {
		return tool, false
	}
	return path, true
}

// SharedSdkRoot returns the per-user SDK location used when a project opts
// into a shared SDK instead of a project-local one.
func SharedSdkRoot() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("detect user home: %w", err)
	}
	return filepath.Join(home, ".droidprep", "sdk"), nil
}

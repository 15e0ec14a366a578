// Package jdk verifies that a working, correctly versioned JDK is present
// before any SDK or key provisioning happens.
package jdk

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"

	"droidprep/internal/config"
	"droidprep/internal/console"
	"droidprep/internal/execx"
	"droidprep/internal/paths"
	"droidprep/internal/platform"
)

const checkClassName = "CheckJDK"

// checkSource is compiled with the user's javac and then executed to verify
// the runtime's major version. It exits non-zero when the running JDK is not
// the release passed as its first argument.
const checkSource = `public class CheckJDK {
    public static void main(String[] args) {
        int expected = Integer.parseInt(args[0]);
        String version = System.getProperty("java.version");
        if (version.startsWith("1.")) {
            version = version.substring(2);
        }
        int dot = version.indexOf('.');
        if (dot > 0) {
            version = version.substring(0, dot);
        }
        int dash = version.indexOf('-');
        if (dash > 0) {
            version = version.substring(0, dash);
        }
        if (Integer.parseInt(version) != expected) {
            System.exit(1);
        }
    }
}
`

// Validator probes the JDK toolchain.
type Validator struct {
	Paths  paths.ProjectPaths
	Config config.Config
	UI     console.UI
	Runner execx.Runner
	Log    logrus.FieldLogger
}

// Check compiles the embedded test program and runs it through the JDK
// runtime. Both probes run as cancellable background operations. A compile
// failure means no usable JDK is installed; a run failure means the
// installed JDK is the wrong release. Both are fatal to provisioning.
func (v *Validator) Check(ctx context.Context) error {
	release := v.Config.JDK.Release

	v.UI.Info(fmt.Sprintf("Compiling a short test program to check for a working JDK %d.", release))

	if err := os.MkdirAll(v.Paths.MetaDir, 0o755); err != nil {
		return fmt.Errorf("prepare meta directory: %w", err)
	}
	sourcePath := filepath.Join(v.Paths.MetaDir, checkClassName+".java")
	if err := os.WriteFile(sourcePath, []byte(checkSource), 0o644); err != nil {
		return fmt.Errorf("write JDK check source: %w", err)
	}

	javac := platform.JavaTool("javac")
	compileErr := v.UI.Background(ctx, "Compiling JDK check", func(ctx context.Context) error {
		_, err := v.Runner.Run(ctx, javac, []string{sourcePath}, execx.RunOptions{})
		return err
	})
	if compileErr != nil {
		v.Log.WithError(compileErr).Error("javac probe failed")
		return fmt.Errorf("unable to compile a test file with javac. If the Java Development Kit is not installed yet, "+
			"download JDK %d from https://adoptium.net/ and make sure javac is on your PATH (or set JAVA_HOME). "+
			"The JDK is different from the JRE, so Java may be present without the JDK. Without a working JDK, provisioning cannot continue", release)
	}

	java := platform.JavaTool("java")
	runErr := v.UI.Background(ctx, "Checking JDK version", func(ctx context.Context) error {
		args := []string{"-classpath", v.Paths.MetaDir, checkClassName, strconv.Itoa(release)}
		_, err := v.Runner.Run(ctx, java, args, execx.RunOptions{})
		return err
	})
	if runErr != nil {
		v.Log.WithError(runErr).Error("java version probe failed")
		return fmt.Errorf("the installed Java is not JDK %d, which is the only release the Android SDK supports. "+
			"Download JDK %d from https://adoptium.net/, or point JAVA_HOME at an existing JDK %d installation", release, release, release)
	}

	v.UI.Success("The JDK is present and working. Good!")
	return nil
}

package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"droidprep/internal/config"
	"droidprep/internal/paths"
	"droidprep/internal/platform"
	"droidprep/internal/props"
	"droidprep/internal/sdk"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check provisioning health",
		RunE:  runDoctor,
	}
}

type healthCheck struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "ok", "warning", "error"
	Summary string `json:"summary"`
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	pp, err := paths.Resolve(viper.GetString("project"))
	if err != nil {
		return err
	}

	cfg, err := config.Load(pp.ConfigFile)
	if err != nil {
		return err
	}
	pp, err = paths.ApplyConfig(pp, cfg)
	if err != nil {
		return err
	}

	checks := []healthCheck{
		checkJDK(),
		checkSDK(pp, cfg),
		checkKeys(pp),
		checkProperties(pp),
	}

	return writeDoctorResult(cmd, pp.Root, checks)
}

func checkJDK() healthCheck {
	var missing []string
	for _, tool := range []string{"javac", "java", "keytool"} {
		if _, ok := platform.LookupJavaTool(tool); !ok {
			missing = append(missing, tool)
		}
	}
	if len(missing) > 0 {
		return healthCheck{Name: "JDK", Status: "error", Summary: strings.Join(missing, ", ") + " not found"}
	}
	return healthCheck{Name: "JDK", Status: "ok", Summary: "javac, java, keytool resolved"}
}

func checkSDK(pp paths.ProjectPaths, cfg config.Config) healthCheck {
	manager := pp.SdkManager()
	ok, err := paths.FileExists(manager)
	if err != nil {
		return healthCheck{Name: "SDK", Status: "error", Summary: err.Error()}
	}
	if !ok {
		return healthCheck{Name: "SDK", Status: "warning", Summary: "command-line tools not unpacked"}
	}

	prov := &sdk.Provisioner{Paths: pp, Config: cfg}
	missing, err := prov.MissingPackages()
	if err != nil {
		return healthCheck{Name: "SDK", Status: "error", Summary: err.Error()}
	}
	if len(missing) > 0 {
		return healthCheck{Name: "SDK", Status: "warning", Summary: "missing packages: " + strings.Join(missing, ", ")}
	}
	return healthCheck{Name: "SDK", Status: "ok", Summary: fmt.Sprintf("%d packages installed", len(cfg.SDK.Packages))}
}

func checkKeys(pp paths.ProjectPaths) healthCheck {
	release, err := paths.FileExists(pp.Keystore)
	if err != nil {
		return healthCheck{Name: "Keys", Status: "error", Summary: err.Error()}
	}
	bundle, err := paths.FileExists(pp.BundleKeystore)
	if err != nil {
		return healthCheck{Name: "Keys", Status: "error", Summary: err.Error()}
	}

	switch {
	case release && bundle:
		return healthCheck{Name: "Keys", Status: "ok", Summary: "release and bundle keystores present"}
	case release:
		return healthCheck{Name: "Keys", Status: "warning", Summary: "bundle keystore missing"}
	case bundle:
		return healthCheck{Name: "Keys", Status: "warning", Summary: "release keystore missing"}
	default:
		return healthCheck{Name: "Keys", Status: "warning", Summary: "no keystores created yet"}
	}
}

func checkProperties(pp paths.ProjectPaths) healthCheck {
	var missing []string
	for _, file := range []string{pp.LocalProperties, pp.BundleProperties} {
		if _, ok, err := props.Get(file, "sdk.dir"); err != nil {
			return healthCheck{Name: "Properties", Status: "error", Summary: err.Error()}
		} else if !ok {
			missing = append(missing, file)
		}
	}
	if len(missing) > 0 {
		return healthCheck{Name: "Properties", Status: "warning", Summary: fmt.Sprintf("sdk.dir unset in %d of 2 property files", len(missing))}
	}
	return healthCheck{Name: "Properties", Status: "ok", Summary: "sdk.dir persisted in both property files"}
}

func writeDoctorResult(cmd *cobra.Command, projectRoot string, checks []healthCheck) error {
	if outputJSON {
		data, err := json.MarshalIndent(checks, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	bold := lipgloss.NewStyle().Bold(true).Inline(true)
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Inline(true)
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Inline(true)
	red := lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Inline(true)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, bold.Render("PROVISIONING HEALTH:")+" "+projectRoot)

	for _, c := range checks {
		var statusStr string
		switch c.Status {
		case "ok":
			statusStr = green.Render("OK")
		case "warning":
			statusStr = yellow.Render("WARN")
		case "error":
			statusStr = red.Render("ERROR")
		}
		fmt.Fprintf(out, "  %-12s %s    %s\n", c.Name+":", statusStr, c.Summary)
	}

	return nil
}

package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config captures the provisioning parameters for a project. Fixed values
// such as the wanted package list and default key passwords live here so
// callers receive explicit configuration instead of reaching for globals.
type Config struct {
	Version int        `yaml:"version"`
	SDK     SDKConfig  `yaml:"sdk"`
	Keys    KeysConfig `yaml:"keys"`
	JDK     JDKConfig  `yaml:"jdk"`
}

// SDKConfig describes where the Android SDK comes from and what must be
// installed into it.
type SDKConfig struct {
	// ToolsVersion is the commandlinetools archive version string, e.g.
	// "8512546_latest".
	ToolsVersion string `yaml:"tools_version"`
	// RepositoryURL is the base URL the archive is fetched from.
	RepositoryURL string `yaml:"repository_url"`
	// TermsURL is shown to the user before the download consent prompt.
	TermsURL string `yaml:"terms_url"`
	// Shared selects the per-user SDK root instead of a project-local Sdk
	// directory.
	Shared bool `yaml:"shared"`
	// Root overrides the SDK root entirely when set.
	Root string `yaml:"root,omitempty"`
	// Packages lists the SDK packages the project needs. Path is the
	// directory checked under the SDK root to decide whether the package is
	// already installed.
	Packages []PackageSpec `yaml:"packages"`
}

// PackageSpec pairs an sdkmanager package id with the directory its
// installation creates under the SDK root.
type PackageSpec struct {
	ID   string `yaml:"id"`
	Path string `yaml:"path"`
}

// KeysConfig fixes the signing key parameters.
type KeysConfig struct {
	Alias         string `yaml:"alias"`
	StorePassword string `yaml:"store_password"`
	KeyPassword   string `yaml:"key_password"`
	Algorithm     string `yaml:"algorithm"`
	SizeBits      int    `yaml:"size_bits"`
	ValidityDays  int    `yaml:"validity_days"`
	// BundleOrganization is embedded in the bundle key's distinguished name.
	// The bundle key is generated without prompting, so the organization
	// cannot be asked for.
	BundleOrganization string `yaml:"bundle_organization"`
}

// JDKConfig pins the single supported JDK release.
type JDKConfig struct {
	Release int `yaml:"release"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Version: 1,
		SDK: SDKConfig{
			ToolsVersion:  "8512546_latest",
			RepositoryURL: "https://dl.google.com/android/repository/",
			TermsURL:      "https://developer.android.com/studio/terms",
			Packages: []PackageSpec{
				{ID: "platform-tools", Path: "platform-tools"},
				{ID: "platforms;android-30", Path: "platforms/android-30"},
			},
		},
		Keys: KeysConfig{
			Alias:              "android",
			StorePassword:      "android",
			KeyPassword:        "android",
			Algorithm:          "RSA",
			SizeBits:           2048,
			ValidityDays:       20000,
			BundleOrganization: "droidprep",
		},
		JDK: JDKConfig{Release: 8},
	}
}

// ApplyDefaults fills zero-valued fields so partially written config files
// still resolve to a usable configuration.
func (c *Config) ApplyDefaults() {
	def := Default()
	if c.Version == 0 {
		c.Version = def.Version
	}
	if c.SDK.ToolsVersion == "" {
		c.SDK.ToolsVersion = def.SDK.ToolsVersion
	}
	if c.SDK.RepositoryURL == "" {
		c.SDK.RepositoryURL = def.SDK.RepositoryURL
	}
	if c.SDK.TermsURL == "" {
		c.SDK.TermsURL = def.SDK.TermsURL
	}
	if len(c.SDK.Packages) == 0 {
		c.SDK.Packages = def.SDK.Packages
	}
	if c.Keys.Alias == "" {
		c.Keys.Alias = def.Keys.Alias
	}
	if c.Keys.StorePassword == "" {
		c.Keys.StorePassword = def.Keys.StorePassword
	}
	if c.Keys.KeyPassword == "" {
		c.Keys.KeyPassword = def.Keys.KeyPassword
	}
	if c.Keys.Algorithm == "" {
		c.Keys.Algorithm = def.Keys.Algorithm
	}
	if c.Keys.SizeBits == 0 {
		c.Keys.SizeBits = def.Keys.SizeBits
	}
	if c.Keys.ValidityDays == 0 {
		c.Keys.ValidityDays = def.Keys.ValidityDays
	}
	if c.Keys.BundleOrganization == "" {
		c.Keys.BundleOrganization = def.Keys.BundleOrganization
	}
	if c.JDK.Release == 0 {
		c.JDK.Release = def.JDK.Release
	}
}

// Load reads the YAML configuration from disk if it exists, otherwise
// returns the default configuration.
func Load(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// Marshal renders the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// Validate reports obviously broken configuration values.
func (c Config) Validate() error {
	if c.SDK.ToolsVersion == "" {
		return errors.New("sdk.tools_version must not be empty")
	}
	if c.SDK.RepositoryURL == "" {
		return errors.New("sdk.repository_url must not be empty")
	}
	for _, pkg := range c.SDK.Packages {
		if pkg.ID == "" || pkg.Path == "" {
			return fmt.Errorf("sdk.packages entries need both id and path (got id=%q path=%q)", pkg.ID, pkg.Path)
		}
	}
	if c.Keys.SizeBits < 2048 {
		return fmt.Errorf("keys.size_bits %d below 2048", c.Keys.SizeBits)
	}
	if c.JDK.Release <= 0 {
		return errors.New("jdk.release must be positive")
	}
	return nil
}

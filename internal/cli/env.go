package cli

import (
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"droidprep/internal/config"
	"droidprep/internal/console"
	"droidprep/internal/execx"
	"droidprep/internal/logx"
	"droidprep/internal/paths"
)

// environment bundles everything a provisioning command needs.
type environment struct {
	Paths  paths.ProjectPaths
	Config config.Config
	UI     console.UI
	Runner execx.Runner
	Log    *logrus.Logger
	closer io.Closer
}

func (e *environment) Close() {
	if e.closer != nil {
		_ = e.closer.Close()
	}
}

// newEnvironment resolves project paths, loads configuration, and opens the
// per-run log file. The project skeleton is created first so the log
// directory exists on a fresh project.
func newEnvironment() (*environment, error) {
	pp, err := paths.Resolve(viper.GetString("project"))
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(pp.ConfigFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pp, err = paths.ApplyConfig(pp, cfg)
	if err != nil {
		return nil, err
	}

	if err := pp.EnsureSkeleton(); err != nil {
		return nil, err
	}

	logger, closer, err := logx.New(pp)
	if err != nil {
		return nil, err
	}

	return &environment{
		Paths:  pp,
		Config: cfg,
		UI:     console.NewTerminal(viper.GetBool("plain")),
		Runner: execx.CmdRunner{},
		Log:    logger,
		closer: closer,
	}, nil
}

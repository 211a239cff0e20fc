package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/notes-flow/internal/app"
	"github.com/nguyentantai21042004/notes-flow/internal/config"
	"github.com/nguyentantai21042004/notes-flow/internal/logger"
	"github.com/nguyentantai21042004/notes-flow/internal/settings"
	"github.com/nguyentantai21042004/notes-flow/internal/version"
)

const defaultConfigFile = "config.yaml"

// ErrActionRequired is returned when a run paused for user input.
var ErrActionRequired = errors.New("action required")

// Dependencies is filled in before any subcommand runs. A non-nil App is
// used as is.
type Dependencies struct {
	App *app.App

	configPath string
	model      string
	endpoint   string
	logLevel   string
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "notes-flow",
		Short:         "Turn meeting recordings into structured notes",
		Long:          "A pipeline that transcribes meeting audio with a local speech-to-text command and summarizes it with a local Ollama model or Gemini.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return deps.init()
		},
	}

	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(version.Full() + "\n")

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&deps.configPath, "config", "c", "", "config file (.yaml or .toml), default ./config.yaml if present")
	flags.StringVar(&deps.model, "model", "", "local model name, overrides ollama.model")
	flags.StringVar(&deps.endpoint, "endpoint", "", "local model server URL, overrides ollama.url")
	flags.StringVar(&deps.logLevel, "log-level", "", "debug, info, warn or error")

	rootCmd.AddCommand(NewProcessCmd(deps))
	rootCmd.AddCommand(NewWatchCmd(deps))
	rootCmd.AddCommand(NewModelsCmd(deps))
	rootCmd.AddCommand(NewDoctorCmd(deps))
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

func (d *Dependencies) init() error {
	if d.App != nil {
		return nil
	}

	path := d.configPath
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if d.logLevel != "" {
		cfg.Logging.Level = strings.ToLower(d.logLevel)
	}

	log := logger.NewWithWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	a, err := app.New(cfg, log)
	if err != nil {
		return fmt.Errorf("initializing app: %w", err)
	}

	if d.model != "" || d.endpoint != "" {
		if _, err := a.Settings.Update(func(s *settings.Settings) {
			if d.model != "" {
				s.LocalModel = d.model
			}
			if d.endpoint != "" {
				s.LocalURL = d.endpoint
			}
		}); err != nil {
			return err
		}
	}

	d.App = a
	return nil
}

package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chaski/registry/internal/workflow"
)

// app is the state shared by every subcommand, filled by PersistentPreRunE.
type app struct {
	configFile string
	verbose    bool

	cfg    *viper.Viper
	logger *slog.Logger
}

func (a *app) client() *workflow.Client {
	return workflow.NewClient(
		a.cfg.GetString(cfgKeyAPIURL),
		a.cfg.GetString(cfgKeyToken),
		&http.Client{Timeout: a.cfg.GetDuration(cfgKeyTimeout)},
	)
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "registryctl",
		Short: "Register events, teams, members, companies and news",
		Long: `registryctl talks to the registry gateway: it uploads images, saves
records and lists what is stored.

Configuration is read from registryctl.yaml and REGISTRY_* variables
(api_url, token, abort_on_upload_failure, timeout).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(a.configFile)
			if err != nil {
				return err
			}
			a.cfg = cfg

			level := slog.LevelWarn
			if a.verbose {
				level = slog.LevelDebug
			}
			a.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default: ./registryctl.yaml or <user config dir>/chaski/registryctl.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log workflow steps to stderr")

	root.AddCommand(
		newSubmitCmd(a),
		newListCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
		newLoginCmd(a),
		newOptionsCmd(a),
	)
	return root
}

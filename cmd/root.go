package cmd

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/csviz/csviz/internal/api"
	"github.com/csviz/csviz/internal/config"
	"github.com/csviz/csviz/internal/creds"
	"github.com/csviz/csviz/internal/tui"
	"github.com/csviz/csviz/internal/workspace"
)

var (
	cfgFile    string
	serverFlag string

	// Package-level version info, set by Execute().
	appVersion string
	appCommit  string
	appDate    string
)

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date

	rootCmd := &cobra.Command{
		Use:   "csviz",
		Short: "Terminal client for the CSV Visualizer service",
		Long: "csviz uploads CSV files to the CSV Visualizer service and browses " +
			"the computed summaries, charts and upload history from the terminal.",
		// Running csviz with no subcommand starts the interactive UI.
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return fmt.Errorf("stdout is not a terminal; use the csviz subcommands (see --help)")
			}
			return runTUI()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default ~/.config/csviz/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&serverFlag, "server", "s", "", "override server base URL")

	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newUploadCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newDemoCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig loads configuration, applying CLI flag overrides.
func initConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if serverFlag != "" {
		cfg.ServerURL = serverFlag
	}
	return cfg, nil
}

// openStore opens the credential store at its configured location.
func openStore(cfg *config.Config) (*creds.Store, error) {
	path := cfg.CredentialsFile
	if path == "" {
		var err error
		path, err = creds.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return creds.Open(path)
}

// newClient builds the gateway with the transport timeout from config
// and the persisted token, if any, installed.
func newClient(cfg *config.Config, store *creds.Store) *api.Client {
	hc := &http.Client{}
	if cfg.TimeoutSeconds > 0 {
		hc.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := api.New(cfg.ServerURL, hc)
	if tok, ok := store.Get(creds.TokenKey); ok {
		client.SetToken(tok)
	}
	return client
}

func runTUI() error {
	cfg, err := initConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	client := newClient(cfg, store)
	ws := workspace.New(store)
	return tui.Run(ws, client, appVersion)
}

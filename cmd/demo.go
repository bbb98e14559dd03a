package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/csviz/csviz/internal/demo"
)

func newDemoCmd() *cobra.Command {
	var addrFlag string
	var dbFlag string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a local demo server implementing the service API",
		Long: "demo serves the CSV Visualizer API contract on localhost for offline " +
			"development: register a user, then point csviz (or the web client) at it " +
			"with --server http://localhost:8800/api.",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath := dbFlag
			if dbPath == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				dbPath = filepath.Join(home, ".config", "csviz", "demo.db")
				if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
					return err
				}
			}
			store, err := demo.OpenStore(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			fmt.Fprintf(os.Stderr, "demo server listening on %s (db %s)\n", addrFlag, dbPath)
			return demo.NewServer(store).ListenAndServe(addrFlag)
		},
	}

	cmd.Flags().StringVar(&addrFlag, "addr", "localhost:8800", "listen address")
	cmd.Flags().StringVar(&dbFlag, "db", "", "sqlite database path (default ~/.config/csviz/demo.db)")
	return cmd
}

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List the most recent uploads",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := initConfig()
			if err != nil {
				return err
			}
			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			client := newClient(cfg, store)

			entries, err := client.History(context.Background())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No uploads yet.")
				return nil
			}
			for _, e := range entries {
				fmt.Printf("%4d  %-30s %6d rows  %s\n",
					e.ID, e.Name, e.RowCount, e.UploadedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

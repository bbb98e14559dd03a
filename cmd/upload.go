package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/csviz/csviz/internal/api"
	"github.com/csviz/csviz/internal/sheet"
)

func newUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a CSV (or .xlsx) file and print its summary",
		Args:  cobra.ExactArgs(1),
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

			name, data, err := sheet.CSVFromFile(args[0])
			if err != nil {
				return err
			}
			ds, err := client.Upload(context.Background(), name, bytes.NewReader(data))
			if err != nil {
				return err
			}

			fmt.Printf("Uploaded %s (id %d, %d rows)\n", ds.Name, ds.ID, ds.RowCount)
			printSummary(os.Stdout, ds.Summary)
			return nil
		},
	}
}

func printSummary(w *os.File, s api.Summary) {
	if len(s.Averages) > 0 {
		fmt.Fprintln(w, "Averages:")
		keys := make([]string, 0, len(s.Averages))
		for k := range s.Averages {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "  %-16s %.2f\n", k, s.Averages[k])
		}
	}
	if len(s.TypeDistribution) > 0 {
		fmt.Fprintln(w, "Type distribution:")
		keys := make([]string, 0, len(s.TypeDistribution))
		for k := range s.TypeDistribution {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "  %-16s %d\n", k, s.TypeDistribution[k])
		}
	}
}

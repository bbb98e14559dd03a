package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	var outFlag string

	cmd := &cobra.Command{
		Use:   "report <dataset-id>",
		Short: "Download the PDF report for a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid dataset id %q", args[0])
			}
			cfg, err := initConfig()
			if err != nil {
				return err
			}
			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			client := newClient(cfg, store)

			pdf, err := client.Report(context.Background(), id)
			if err != nil {
				return err
			}
			out := outFlag
			if out == "" {
				out = fmt.Sprintf("report_%d.pdf", id)
			}
			if err := os.WriteFile(out, pdf, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Saved %s (%d bytes).\n", out, len(pdf))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outFlag, "out", "o", "", "output file (default report_<id>.pdf)")
	return cmd
}

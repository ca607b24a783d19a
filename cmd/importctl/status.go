package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	app "github.com/mohammadpnp/candidate-import/internal/application/bulkimport"
)

func newStatusCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <import-id>",
		Short: "Show progress of an import job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			out, err := app.NewGetStatus(rt.store).Execute(ctx, args[0])
			if err != nil {
				return err
			}

			return writeOutput(cmd.OutOrStdout(), root.Format, out, func(w io.Writer) error {
				return printStatus(w, out)
			})
		},
	}
}

func printStatus(w io.Writer, out app.StatusOutput) error {
	_, err := fmt.Fprintf(w, "%s %s (%s): %d/%d processed, %d success, %d failed, %d%%\n",
		out.JobID, out.Status, out.Filename, out.Processed, out.Total, out.Success, out.Failed, out.ProgressPercent)
	return err
}

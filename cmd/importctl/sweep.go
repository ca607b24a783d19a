package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/mohammadpnp/candidate-import/internal/bootstrap"
)

type sweepResult struct {
	Deleted   int    `json:"deleted"`
	Retention string `json:"retention"`
}

func newSweepCommand(root *rootOptions) *cobra.Command {
	var retention time.Duration

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Delete abandoned draft imports once",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			if retention > 0 {
				rt.cfg.Import.DraftRetention = retention
			}
			archive, err := bootstrap.NewArchive(ctx, rt.cfg)
			if err != nil {
				return fmt.Errorf("init upload archive: %w", err)
			}

			deleted, err := bootstrap.NewSweeper(rt.cfg, rt.store, archive, rt.logger).RunOnce(ctx)
			if err != nil {
				return err
			}

			res := sweepResult{Deleted: deleted, Retention: rt.cfg.Import.DraftRetention.String()}
			return writeOutput(cmd.OutOrStdout(), root.Format, res, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "deleted %d draft imports older than %s\n", res.Deleted, res.Retention)
				return err
			})
		},
	}

	cmd.Flags().DurationVar(&retention, "retention", 0, "override IMPORT_DRAFT_RETENTION for this run")
	return cmd
}

package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	app "github.com/mohammadpnp/candidate-import/internal/application/bulkimport"
	"github.com/mohammadpnp/candidate-import/internal/bootstrap"
	"github.com/mohammadpnp/candidate-import/internal/infrastructure/file"
	"github.com/mohammadpnp/candidate-import/internal/infrastructure/repository"
)

func newPreviewCommand(root *rootOptions) *cobra.Command {
	var (
		userID  int64
		baseDir string
	)

	cmd := &cobra.Command{
		Use:   "preview <file.csv>",
		Short: "Validate a candidate file from disk and store it as a draft import",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID <= 0 {
				return errors.New("--user-id is required")
			}

			ctx := cmd.Context()
			rt, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			limit, err := rt.cfg.UploadLimitBytes()
			if err != nil {
				return err
			}
			data, filename, err := file.NewLocalSource(baseDir, limit).ReadAll(ctx, args[0])
			if err != nil {
				return err
			}

			loc, err := rt.cfg.Location()
			if err != nil {
				return err
			}
			archive, err := bootstrap.NewArchive(ctx, rt.cfg)
			if err != nil {
				return fmt.Errorf("init upload archive: %w", err)
			}

			var drafts app.DraftWriter = rt.store
			if rt.cfg.Import.UseCopy {
				drafts = repository.NewDraftCopyWriter(rt.pool)
			}

			out, err := app.NewPreview(rt.refs, rt.refs, drafts, app.PreviewConfig{
				PreviewRows: rt.cfg.Import.PreviewRows,
				Validator: app.ValidatorConfig{
					DefaultCountryCode: rt.cfg.Import.DefaultCountryCode,
					Location:           loc,
				},
				Archive: archive,
				Logger:  rt.logger,
			}).Execute(ctx, app.PreviewInput{File: data, Filename: filename, UserID: userID})
			if err != nil {
				return err
			}

			return writeOutput(cmd.OutOrStdout(), root.Format, out, func(w io.Writer) error {
				return printPreview(w, out)
			})
		},
	}

	cmd.Flags().Int64Var(&userID, "user-id", 0, "corporate user submitting the file")
	cmd.Flags().StringVar(&baseDir, "base-dir", ".", "directory relative paths are resolved against")
	return cmd
}

func printPreview(w io.Writer, out app.PreviewOutput) error {
	s := out.Summary
	if _, err := fmt.Fprintf(w, "import %s: %d rows, %d valid, %d invalid, %d need confirmation\n",
		out.ImportID, s.Total, s.Valid, s.Invalid, s.NeedsConfirmation); err != nil {
		return err
	}
	for _, row := range out.Rows {
		if row.ErrorMessage == nil {
			continue
		}
		if _, err := fmt.Fprintf(w, "  row %d: %s\n", row.RowIndex, *row.ErrorMessage); err != nil {
			return err
		}
	}
	return nil
}

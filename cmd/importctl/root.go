package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/mohammadpnp/candidate-import/internal/bootstrap"
	"github.com/mohammadpnp/candidate-import/internal/config"
	"github.com/mohammadpnp/candidate-import/internal/infrastructure/repository"
	"github.com/mohammadpnp/candidate-import/internal/logging"
)

var validFormats = []string{"text", "json"}

type rootOptions struct {
	Format string
}

type session struct {
	cfg    *config.Configuration
	db     *gorm.DB
	pool   *pgxpool.Pool
	store  *repository.ImportStore
	refs   *repository.ReferenceStore
	logger *logrus.Entry
}

func (r *session) Close() {
	bootstrap.CloseDatabase(r.db, r.pool)
}

func openSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	db, pool, err := bootstrap.OpenDatabase(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	logger := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	return &session{
		cfg:    cfg,
		db:     db,
		pool:   pool,
		store:  repository.NewImportStore(db),
		refs:   repository.NewReferenceStore(db),
		logger: logging.Component(logger, "importctl"),
	}, nil
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "importctl",
		Short:         "Operate the bulk candidate import pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, validFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(newSweepCommand(opts))
	cmd.AddCommand(newPreviewCommand(opts))
	cmd.AddCommand(newStatusCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range validFormats {
		if f == format {
			return true
		}
	}
	return false
}

// writeOutput prints v as indented JSON, or hands it to text in text mode.
func writeOutput(w io.Writer, format string, v any, text func(io.Writer) error) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return text(w)
}

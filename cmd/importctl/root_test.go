package main

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "github.com/mohammadpnp/candidate-import/internal/application/bulkimport"
	domain "github.com/mohammadpnp/candidate-import/internal/domain/bulkimport"
)

func TestCommandPresence(t *testing.T) {
	cmd := newRootCommand()

	for _, name := range []string{"sweep", "preview", "status"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestCommandFlags(t *testing.T) {
	cmd := newRootCommand()

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	preview, _, err := cmd.Find([]string{"preview"})
	require.NoError(t, err)
	assert.NotNil(t, preview.Flags().Lookup("user-id"))
	assert.NotNil(t, preview.Flags().Lookup("base-dir"))

	sweep, _, err := cmd.Find([]string{"sweep"})
	require.NoError(t, err)
	assert.NotNil(t, sweep.Flags().Lookup("retention"))
}

func TestRejectsUnknownFormat(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"--format", "yaml", "status", "job-1"})
	cmd.SetOut(io.Discard)

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestPreviewRequiresUserID(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"preview", "cands.csv"})
	cmd.SetOut(io.Discard)

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--user-id is required")
}

func TestWriteOutput(t *testing.T) {
	msg := "Email is required"
	out := app.PreviewOutput{
		ImportID: "job-1",
		Summary:  app.PreviewSummary{Total: 2, Valid: 1, Invalid: 1},
		Rows:     []app.RowOutput{{RowIndex: 1}, {RowIndex: 2, ErrorMessage: &msg}},
	}

	var text bytes.Buffer
	require.NoError(t, writeOutput(&text, "text", out, func(w io.Writer) error { return printPreview(w, out) }))
	assert.Equal(t, "import job-1: 2 rows, 1 valid, 1 invalid, 0 need confirmation\n  row 2: Email is required\n", text.String())

	var js bytes.Buffer
	require.NoError(t, writeOutput(&js, "json", out, nil))
	assert.Contains(t, js.String(), `"import_id": "job-1"`)

	var status bytes.Buffer
	require.NoError(t, printStatus(&status, app.StatusOutput{
		JobID: "job-1", Status: domain.JobStatusProcessing, Filename: "cands.csv",
		Total: 3, Processed: 2, Success: 2, ProgressPercent: 67,
	}))
	assert.Equal(t, "job-1 PROCESSING (cands.csv): 2/3 processed, 2 success, 0 failed, 67%\n", status.String())
}

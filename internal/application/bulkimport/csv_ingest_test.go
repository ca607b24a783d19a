package bulkimport_test

import (
	"errors"
	"strings"
	"testing"

	app "github.com/mohammadpnp/candidate-import/internal/application/bulkimport"
)

func TestParseCSVSkipsEmptyRowsAndTrims(t *testing.T) {
	t.Parallel()

	input := "\xEF\xBB\xBF Email , Mobile,GroupName\n" +
		"  a@x.com ,  9000000001 , Batch A\n" +
		",,\n" +
		"\n" +
		"b@x.com,9000000002,\n"

	rows, err := app.ParseCSV(strings.NewReader(input), "upload.CSV")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Index != 1 || rows[1].Index != 2 {
		t.Fatalf("unexpected indexes: %d, %d", rows[0].Index, rows[1].Index)
	}
	if got := rows[0].Fields["Email"]; got != "a@x.com" {
		t.Fatalf("unexpected email %q", got)
	}
	if got := rows[0].Fields["GroupName"]; got != "Batch A" {
		t.Fatalf("unexpected group %q", got)
	}
	if got, ok := rows[1].Fields["GroupName"]; !ok || got != "" {
		t.Fatalf("expected empty group column, got %q (present=%v)", got, ok)
	}
}

func TestParseCSVShortRecordsAndDuplicateHeaders(t *testing.T) {
	t.Parallel()

	input := "Email,Email,Mobile\nfirst@x.com,second@x.com\n"

	rows, err := app.ParseCSV(strings.NewReader(input), "a.csv")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := rows[0].Fields["Email"]; got != "first@x.com" {
		t.Fatalf("expected first duplicate column to win, got %q", got)
	}
	if got := rows[0].Fields["Mobile"]; got != "" {
		t.Fatalf("expected missing trailing column to be empty, got %q", got)
	}
}

func TestParseCSVRejects(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		filename string
		input    string
	}{
		{name: "extension", filename: "upload.xlsx", input: "Email\na@x.com\n"},
		{name: "empty file", filename: "a.csv", input: ""},
		{name: "header only", filename: "a.csv", input: "Email,Mobile\n"},
		{name: "blank rows only", filename: "a.csv", input: "Email,Mobile\n,\n\n"},
		{name: "unterminated quote", filename: "a.csv", input: "Email,Mobile\n\"a@x.com,9000000001\n"},
		{name: "bare quote", filename: "a.csv", input: "Email,Mobile\na\"b@x.com,9000000001\n"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := app.ParseCSV(strings.NewReader(tc.input), tc.filename)
			if !errors.Is(err, app.ErrInvalidFormat) {
				t.Fatalf("expected ErrInvalidFormat, got %v", err)
			}
		})
	}
}

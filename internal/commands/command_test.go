package commands

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sandeepkv93/timerd/internal/model"
)

func TestParseSupportedCommands(t *testing.T) {
	cases := []struct {
		in       string
		typeWant Type
	}{
		{"/add Sprint 10 Work", TypeAdd},
		{"start Work", TypeStart},
		{"pause Study", TypePause},
		{"/reset Break", TypeReset},
		{"filter all", TypeFilter},
		{"remove 42", TypeRemove},
		{"clear-history", TypeClearHistory},
		{"export history.yaml", TypeExport},
		{"show history", TypeShow},
	}

	for _, tc := range cases {
		cmd, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		if cmd.Type != tc.typeWant {
			t.Fatalf("parse %q type = %s, want %s", tc.in, cmd.Type, tc.typeWant)
		}
	}
}

func TestParseAddKeepsMultiWordName(t *testing.T) {
	cmd, err := Parse("add Morning run 1800 Workout")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	want := AddArgs{Name: "Morning run", DurationText: "1800", Category: "Workout"}
	if diff := cmp.Diff(want, *cmd.Add); diff != "" {
		t.Fatalf("unexpected args (-want +got):\n%s", diff)
	}
}

func TestParseBulkMapsAction(t *testing.T) {
	cmd, err := Parse("reset Deep Work")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Bulk.Action != model.BulkActionReset || cmd.Bulk.Category != "Deep Work" {
		t.Fatalf("unexpected bulk args: %+v", cmd.Bulk)
	}
}

func TestParseFilterNormalizesAll(t *testing.T) {
	cmd, err := Parse("filter ALL")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Filter.Category != model.CategoryAll {
		t.Fatalf("expected %q, got %q", model.CategoryAll, cmd.Filter.Category)
	}
}

func TestParseExportFormat(t *testing.T) {
	cases := []struct {
		in   string
		want ExportArgs
	}{
		{"export out.json", ExportArgs{Path: "out.json", Format: "json"}},
		{"export out.YML", ExportArgs{Path: "out.YML", Format: "yaml"}},
		{"export dump yaml", ExportArgs{Path: "dump", Format: "yaml"}},
	}
	for _, tc := range cases {
		cmd, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		if diff := cmp.Diff(tc.want, *cmd.Export); diff != "" {
			t.Fatalf("parse %q (-want +got):\n%s", tc.in, diff)
		}
	}
}

func TestParseInvalidArguments(t *testing.T) {
	for _, in := range []string{"add Sprint 10", "start", "filter", "remove", "remove a b", "export", "show calendar"} {
		_, err := Parse(in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeInvalidArgument {
			t.Fatalf("parse %q: expected invalid argument, got %v", in, err)
		}
	}
}

func TestParseEmptyInput(t *testing.T) {
	for _, in := range []string{"", "  ", "/"} {
		_, err := Parse(in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeEmptyInput {
			t.Fatalf("parse %q: expected empty input error, got %v", in, err)
		}
	}
}

func TestParseUnknownCommand(t *testing.T) {
	_, err := Parse("/snooze overdue")
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeUnknownCommand {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestExecuteDispatch(t *testing.T) {
	cmd, err := Parse("/pause Work")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	called := false
	res, err := Execute(cmd, Handlers{
		Bulk: func(a BulkArgs) (Result, error) {
			called = true
			if a.Action != model.BulkActionPause || a.Category != "Work" {
				t.Fatalf("unexpected args: %+v", a)
			}
			return Result{Message: "ok"}, nil
		},
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !called || res.Message != "ok" {
		t.Fatalf("dispatch failed, called=%v res=%+v", called, res)
	}
}

func TestExecuteMissingHandler(t *testing.T) {
	cmd, err := Parse("clear-history")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	_, err = Execute(cmd, Handlers{})
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeHandlerMissing {
		t.Fatalf("expected missing handler error, got %v", err)
	}
}

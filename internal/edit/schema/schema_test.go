package schema_test

import (
	"testing"

	"github.com/danmuck/ratree/internal/edit/schema"
)

func TestValidateAcceptsExpectedFormat(t *testing.T) {
	if err := schema.Validate(schema.CmdMk, "wrss"); err != nil {
		t.Fatalf("mk: %v", err)
	}
	if err := schema.Validate(schema.CmdDelete, "rs"); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestValidateRejectsWrongFormat(t *testing.T) {
	if err := schema.Validate(schema.CmdMk, "ws"); err == nil {
		t.Fatalf("expected mismatch error")
	}
}

func TestValidateRejectsUnknownCommand(t *testing.T) {
	if err := schema.Validate("bogus", ""); err == nil {
		t.Fatalf("expected unknown-command error")
	}
}

func TestCommandsListsEveryFormat(t *testing.T) {
	names := schema.Commands()
	if len(names) != 13 {
		t.Fatalf("expected 13 known commands, got %d", len(names))
	}
}

func TestFormatForMatchesValidate(t *testing.T) {
	for _, name := range schema.Commands() {
		format, ok := schema.FormatFor(name)
		if !ok {
			t.Fatalf("FormatFor missing entry for %q", name)
		}
		if err := schema.Validate(name, format); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}
}

package sessions

import (
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/studyplan/internal/cli/clitest"
	"github.com/julianstephens/studyplan/internal/session"
)

func fixedClock(t *testing.T) {
	t.Helper()
	prev := session.Now
	session.Now = func() time.Time { return time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { session.Now = prev })
}

func TestNewCmd(t *testing.T) {
	fixedClock(t)
	ctx, out := clitest.NewContext(t)

	if err := (&NewCmd{Name: "finals"}).Run(ctx); err != nil {
		t.Fatalf("NewCmd failed: %v", err)
	}
	sess, err := ctx.CurrentSession()
	if err != nil {
		t.Fatalf("new session should be active: %v", err)
	}
	if sess.Name != "finals" || sess.Constraints.StartDate != "2026-10-17" {
		t.Errorf("unexpected session %+v", sess)
	}
	if !strings.Contains(out.String(), `Created session "finals"`) {
		t.Errorf("unexpected output %q", out.String())
	}

	if err := (&NewCmd{Name: "finals"}).Run(ctx); err == nil {
		t.Error("duplicate session name should fail")
	}
}

func TestNewCmdValidate(t *testing.T) {
	tests := []struct {
		name    string
		cmd     NewCmd
		wantErr bool
	}{
		{"ok", NewCmd{Name: "finals"}, false},
		{"blank name", NewCmd{Name: "  "}, true},
		{"bad start", NewCmd{Name: "finals", Start: "10/17/2026"}, true},
		{"good start", NewCmd{Name: "finals", Start: "2026-10-20"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cmd.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestUseListDelete(t *testing.T) {
	fixedClock(t)
	ctx, out := clitest.NewContext(t)

	for _, name := range []string{"midterms", "finals"} {
		if err := (&NewCmd{Name: name}).Run(ctx); err != nil {
			t.Fatalf("NewCmd(%s) failed: %v", name, err)
		}
	}
	if err := (&UseCmd{Name: "midterms"}).Run(ctx); err != nil {
		t.Fatalf("UseCmd failed: %v", err)
	}
	sess, _ := ctx.CurrentSession()
	if sess.Name != "midterms" {
		t.Errorf("active session = %s, want midterms", sess.Name)
	}

	out.Reset()
	if err := (&ListCmd{}).Run(ctx); err != nil {
		t.Fatalf("ListCmd failed: %v", err)
	}
	if !strings.Contains(out.String(), "* midterms") {
		t.Errorf("active session not marked:\n%s", out.String())
	}

	if err := (&DeleteCmd{Name: "midterms"}).Run(ctx); err != nil {
		t.Fatalf("DeleteCmd failed: %v", err)
	}
	if _, err := ctx.CurrentSession(); err == nil || !strings.Contains(err.Error(), "deleted") {
		t.Errorf("expected deleted active session error, got %v", err)
	}

	if err := (&RestoreCmd{ID: sess.ID}).Run(ctx); err != nil {
		t.Fatalf("RestoreCmd failed: %v", err)
	}
	if _, err := ctx.CurrentSession(); err != nil {
		t.Errorf("restored session should be active again: %v", err)
	}
}

func TestCurrentSessionWithoutAny(t *testing.T) {
	ctx, _ := clitest.NewContext(t)
	if err := (&ShowCmd{}).Run(ctx); err == nil || !strings.Contains(err.Error(), "session new") {
		t.Errorf("expected hint to create a session, got %v", err)
	}
}

func TestSessionFlagOverridesActive(t *testing.T) {
	fixedClock(t)
	ctx, out := clitest.NewContext(t)
	for _, name := range []string{"a", "b"} {
		if err := (&NewCmd{Name: name}).Run(ctx); err != nil {
			t.Fatal(err)
		}
	}

	ctx.Session = "a"
	out.Reset()
	if err := (&ShowCmd{}).Run(ctx); err != nil {
		t.Fatalf("ShowCmd failed: %v", err)
	}
	if !strings.Contains(out.String(), "Session: a ") {
		t.Errorf("expected session a, got:\n%s", out.String())
	}

	ctx.Session = "missing"
	if err := (&ShowCmd{}).Run(ctx); err == nil {
		t.Error("unknown --session should fail")
	}
}

package paint

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/ravel/internal/config"
	"github.com/dshills/ravel/internal/proc"
	"github.com/dshills/ravel/internal/ui"
	"github.com/dshills/ravel/internal/vterm"
)

func newSimBackend(t *testing.T) *Backend {
	t.Helper()
	screen := tcell.NewSimulationScreen("")
	if err := screen.Init(); err != nil {
		t.Fatalf("sim screen init: %v", err)
	}
	screen.SetSize(80, 24)
	t.Cleanup(screen.Fini)
	return newBackendWithScreen(screen)
}

func waitForState(t *testing.T, p *proc.Proc, want proc.State, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if p.State() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("proc did not reach state %v within %v", want, timeout)
}

func TestRenderEmptyProcList(t *testing.T) {
	backend := newSimBackend(t)
	painter := NewPainter(backend)
	state := ui.NewState(0)

	painter.Render(nil, state) // must not panic on an empty proc list
}

func TestRenderSimpleKindProc(t *testing.T) {
	backend := newSimBackend(t)
	painter := NewPainter(backend)

	p := proc.New(config.ProcDecl{
		Name: "echoer",
		Cmd:  []string{"echo", "hello from ravel"},
		TTY:  false,
		Stop: config.Stop{Mode: config.StopSIGTERM},
	}, 24, 80)
	if err := p.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitForState(t, p, proc.StateStopped, 2*time.Second)

	state := ui.NewState(1)
	painter.Render([]*proc.Proc{p}, state)
}

func TestLayoutCompute(t *testing.T) {
	l := Compute(24, 80)
	if l.Help.Y != 23 || l.Help.H != 1 {
		t.Fatalf("expected help row pinned to last line, got %+v", l.Help)
	}
	if l.List.W != listPaneWidth {
		t.Fatalf("expected list pane width %d, got %d", listPaneWidth, l.List.W)
	}
	if l.Main.X != l.List.X+l.List.W {
		t.Fatalf("expected main pane to start after list pane")
	}
}

func TestLayoutComputeNarrowTerminal(t *testing.T) {
	l := Compute(24, 30)
	if l.List.W >= listPaneWidth {
		t.Fatalf("expected list pane to shrink on a narrow terminal, got %d", l.List.W)
	}
	if l.List.W < minListPaneWidth {
		t.Fatalf("expected list pane to respect the minimum width, got %d", l.List.W)
	}
}

func TestTruncateWideRunes(t *testing.T) {
	s := truncate("你好world", 5)
	if displayWidth(s) > 5 {
		t.Fatalf("truncated string %q exceeds width 5", s)
	}
}

func TestReportedTitlePrefersTitleOverIconName(t *testing.T) {
	screen := vterm.NewScreen(10, 2)
	screen.SetIconName("icon")
	if got := reportedTitle(screen); got != "icon" {
		t.Fatalf("expected icon-name fallback, got %q", got)
	}

	screen.SetTitle("window")
	if got := reportedTitle(screen); got != "window" {
		t.Fatalf("expected title to win, got %q", got)
	}
}

func TestComposeHelp(t *testing.T) {
	base := "q quit"

	if got := composeHelp(base, "", "", 40); got != base {
		t.Errorf("empty status should leave help untouched, got %q", got)
	}

	got := composeHelp(base, "vim", "/srv/app", 40)
	if !strings.HasPrefix(got, base) || !strings.HasSuffix(got, "vim  /srv/app") {
		t.Errorf("composed = %q, want base prefix and right-aligned status", got)
	}
	if displayWidth(got) != 40 {
		t.Errorf("composed width = %d, want exactly 40", displayWidth(got))
	}

	// Too narrow to right-align: status still appended, truncation is the
	// caller's job.
	narrow := composeHelp(base, "vim", "", 8)
	if narrow != base+"  vim" {
		t.Errorf("narrow composed = %q", narrow)
	}
}

package ctl

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dshills/ravel/internal/config"
	"github.com/dshills/ravel/internal/engine"
	"github.com/dshills/ravel/internal/proc"
	"github.com/dshills/ravel/internal/ui"
)

// Apply executes one decoded Command against e. batch runs its nested
// commands in order and returns the first error, if any.
func Apply(e *engine.Engine, c Command) error {
	switch c.C {
	case "quit":
		go e.Quit(context.Background())
		return nil
	case "force-quit":
		go e.ForceQuit(context.Background())
		return nil
	case "toggle-focus":
		e.State.ToggleFocus()
		e.Scheduler.Schedule()
		return nil
	case "focus-procs":
		e.State.SetFocus(ui.FocusProcs)
		e.Scheduler.Schedule()
		return nil
	case "focus-term":
		e.State.SetFocus(ui.FocusTerm)
		e.Scheduler.Schedule()
		return nil
	case "next-proc":
		e.State.SelectNext()
		e.Scheduler.Schedule()
		return nil
	case "prev-proc":
		e.State.SelectPrev()
		e.Scheduler.Schedule()
		return nil
	case "select-proc":
		if c.Index == nil {
			return fmt.Errorf("ctl: select-proc requires index")
		}
		e.State.SelectIndex(*c.Index)
		e.Scheduler.Schedule()
		return nil
	case "start-proc":
		p, err := resolveProc(e, c.ID)
		if err != nil {
			return err
		}
		return p.Start()
	case "term-proc":
		p, err := resolveProc(e, c.ID)
		if err != nil {
			return err
		}
		p.Stop()
		return nil
	case "kill-proc":
		p, err := resolveProc(e, c.ID)
		if err != nil {
			return err
		}
		p.Kill()
		return nil
	case "restart-proc":
		p, err := resolveProc(e, c.ID)
		if err != nil {
			return err
		}
		p.Restart()
		return nil
	case "force-restart-proc":
		p, err := resolveProc(e, c.ID)
		if err != nil {
			return err
		}
		p.Kill()
		go func() {
			<-p.Stopped()
			_ = p.Start()
		}()
		return nil
	case "add-proc":
		if len(c.Cmd) == 0 {
			return fmt.Errorf("ctl: add-proc requires cmd")
		}
		name := c.Name
		if name == "" {
			name = c.Cmd[0]
		}
		e.AddProc(config.ProcDecl{
			Name:      name,
			Cmd:       c.Cmd,
			TTY:       true,
			Autostart: true,
		})
		return nil
	case "remove-proc":
		id, err := uuid.Parse(c.ID)
		if err != nil {
			return fmt.Errorf("ctl: remove-proc: %w", err)
		}
		if !e.RemoveProc(id) {
			return fmt.Errorf("ctl: remove-proc: no such proc %s", c.ID)
		}
		return nil
	case "rename-proc":
		if c.Name == "" {
			return fmt.Errorf("ctl: rename-proc requires name")
		}
		e.RenameProc(c.Name)
		return nil
	case "scroll-up":
		return scroll(e, intOr(c.N, 0), true)
	case "scroll-down":
		return scroll(e, intOr(c.N, 0), false)
	case "scroll-down-lines":
		if c.N == nil {
			return fmt.Errorf("ctl: scroll-down-lines requires n")
		}
		return scroll(e, *c.N, false)
	case "send-key":
		if c.Key == "" {
			return fmt.Errorf("ctl: send-key requires key")
		}
		ev, ok := proc.ParseKeySpec(config.KeySpec(c.Key))
		if !ok {
			return fmt.Errorf("ctl: send-key: unrecognized key %q", c.Key)
		}
		e.SendInput(ev)
		return nil
	case "batch":
		for i, sub := range c.Cmds {
			if err := Apply(e, sub); err != nil {
				return fmt.Errorf("ctl: batch[%d]: %w", i, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("ctl: unknown command %q", c.C)
	}
}

// resolveProc returns the proc named by id, or the currently selected
// proc if id is empty.
func resolveProc(e *engine.Engine, id string) (*proc.Proc, error) {
	if id == "" {
		if p := e.CurrentProc(); p != nil {
			return p, nil
		}
		return nil, fmt.Errorf("ctl: no proc selected")
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("ctl: invalid id %q: %w", id, err)
	}
	p := e.ProcByID(parsed)
	if p == nil {
		return nil, fmt.Errorf("ctl: no such proc %s", id)
	}
	return p, nil
}

func scroll(e *engine.Engine, n int, up bool) error {
	p := e.CurrentProc()
	if p == nil {
		return fmt.Errorf("ctl: no proc selected")
	}
	vk := p.VtermKind()
	if vk == nil {
		return fmt.Errorf("ctl: selected proc has no scrollback")
	}
	if n <= 0 {
		rows, _ := e.State.TermSize()
		n = rows / 2
		if n < 1 {
			n = 1
		}
	}
	if up {
		vk.ScrollUp(n)
	} else {
		vk.ScrollDown(n)
	}
	e.Scheduler.Schedule()
	return nil
}

// Command ravel is a terminal multiplexer for dev workflows: it runs a
// declared set of processes side by side, each attached to a PTY and a
// VT100 emulator, behind a single-terminal TUI with a proc list, the
// selected proc's live output, and a help row.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dshills/ravel/internal/config"
	"github.com/dshills/ravel/internal/ctl"
	"github.com/dshills/ravel/internal/engine"
	"github.com/dshills/ravel/internal/logging"
	"github.com/dshills/ravel/internal/paint"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ravel:", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	names      string
	npm        bool
	server     string
	ctlYAML    string
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "ravel [cmd...]",
		Short: "Run multiple dev processes side by side in one terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "proc declaration file (YAML)")
	flags.StringVar(&opts.names, "names", "", "comma-separated names for ad-hoc positional procs")
	flags.BoolVar(&opts.npm, "npm", false, "load procs from ./package.json scripts")
	flags.StringVar(&opts.server, "server", "", "remote-control socket address (unix path or host:port)")
	flags.StringVar(&opts.ctlYAML, "ctl", "", "send a remote-control command (requires --server) and exit")

	return cmd
}

func run(opts options, args []string) error {
	if opts.ctlYAML != "" {
		return runCtlClient(opts)
	}

	decls, err := loadDecls(opts, args)
	if err != nil {
		return err
	}
	if len(decls) == 0 {
		return fmt.Errorf("no procs declared: pass a command, --config, or --npm")
	}

	log := logging.New(logging.ParseLevel(os.Getenv("RAVEL_LOG_LEVEL")), nil)

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("ravel: stdout is not a terminal")
	}

	backend, err := paint.NewBackend()
	if err != nil {
		return fmt.Errorf("ravel: init terminal: %w", err)
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("ravel: init terminal: %w", err)
	}
	defer backend.Shutdown()

	rows, cols := backend.Size()
	eng := engine.New(decls, rows, cols, log)
	eng.Start()

	painter := paint.NewPainter(backend)
	painter.SetTrueColor(backend.HasTrueColor())

	var ctlServer *ctl.Server
	if opts.server != "" {
		ctlServer, err = ctl.Listen(opts.server, eng, log)
		if err != nil {
			return err
		}
		go func() {
			if err := ctlServer.Serve(); err != nil {
				log.Debug("ctl server stopped: %v", err)
			}
		}()
		defer ctlServer.Close()
	}

	return runEventLoop(eng, backend, painter, log)
}

// runEventLoop drives the cooperative tick: host-terminal events route
// through the dispatcher, an async proc rerender merely schedules a
// render that the next tick's Flush picks up, and a fixed-rate ticker
// stands in for "next cooperative tick" so output from a non-focused
// goroutine (a proc's read loop) still reaches the screen promptly.
func runEventLoop(eng *engine.Engine, backend *paint.Backend, painter *paint.Painter, log *logging.Logger) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	events := make(chan paint.Event, 16)
	go func() {
		for {
			ev := backend.PollEvent()
			events <- ev
			if ev.Kind == paint.EventNone {
				return
			}
		}
	}()

	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()

	flush := func() {
		if eng.Scheduler.Flush() {
			painter.Render(eng.Procs(), eng.State)
		}
	}
	flush()

	for {
		select {
		case <-eng.Done():
			return nil

		case <-sigCh:
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			go func() {
				defer cancel()
				eng.Quit(ctx)
			}()

		case ev := <-events:
			switch ev.Kind {
			case paint.EventKeyPress:
				eng.Dispatcher.Dispatch(ev.Key)
			case paint.EventMousePress:
				eng.SendMouse(ev.Mouse)
			case paint.EventResize:
				eng.Resize(ev.Resize.Rows, ev.Resize.Cols)
			}
			flush()

		case <-ticker.C:
			flush()
		}
	}
}

func runCtlClient(opts options) error {
	if opts.server == "" {
		return fmt.Errorf("--ctl requires --server to name a target address")
	}
	reply, err := ctl.Send(opts.server, opts.ctlYAML)
	if err != nil {
		return err
	}
	fmt.Println(reply)
	if strings.HasPrefix(reply, "error:") {
		return fmt.Errorf("%s", reply)
	}
	return nil
}

// loadDecls resolves the proc declaration list from, in order of
// precedence: --config, --npm, then positional args, each one an ad-hoc
// shell proc.
func loadDecls(opts options, args []string) ([]config.ProcDecl, error) {
	switch {
	case opts.configPath != "":
		return config.NewLoader().LoadFrom(opts.configPath)

	case opts.npm:
		data, err := os.ReadFile("package.json")
		if err != nil {
			return nil, fmt.Errorf("ravel: --npm: %w", err)
		}
		return config.LoadNpmScripts(data)

	case len(args) > 0:
		// Each positional arg is one ad-hoc shell proc; --names renames
		// them positionally.
		var names []string
		if opts.names != "" {
			names = strings.Split(opts.names, ",")
		}
		decls := make([]config.ProcDecl, 0, len(args))
		for i, shell := range args {
			name := shell
			if i < len(names) && names[i] != "" {
				name = names[i]
			}
			decls = append(decls, config.ProcDecl{
				Name:      name,
				Shell:     shell,
				TTY:       true,
				Autostart: true,
			})
		}
		return decls, nil

	default:
		return nil, nil
	}
}

package commands

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aki/amber/internal/browser"
	"github.com/aki/amber/internal/browser/memory"
	"github.com/aki/amber/internal/engine"
)

type runOptions struct {
	windowsFile      string
	save             []string
	autoSave         bool
	exitOnDisconnect bool
}

func runCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the session engine",
		Long: `Run the session engine against a headless browser host.

The engine rebinds stored sessions to open windows, watches their tabs and
talks to the native companion named in the configuration. It runs until
interrupted.`,
		Example: `  # Start with the windows described in a file
  amber run --windows windows.yaml

  # Save window 1 as a session named "work" once started
  amber run --windows windows.yaml --save 1=work --auto-save`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEngine(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.windowsFile, "windows", "", "YAML file with the initial browser windows")
	cmd.Flags().StringArrayVar(&opts.save, "save", nil, "Save a window as a session after startup (WINDOW=NAME, repeatable)")
	cmd.Flags().BoolVar(&opts.autoSave, "auto-save", false, "Enable auto-save for sessions created with --save")
	cmd.Flags().BoolVar(&opts.exitOnDisconnect, "exit-on-disconnect", false, "Stop when the companion closes its channel")

	return cmd
}

// saveRequest is one parsed --save flag.
type saveRequest struct {
	windowID int
	name     string
}

func parseSave(values []string) ([]saveRequest, error) {
	requests := make([]saveRequest, 0, len(values))
	for _, v := range values {
		window, name, ok := strings.Cut(v, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid --save %q: expected WINDOW=NAME", v)
		}
		id, err := strconv.Atoi(window)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid --save %q: window must be a positive id", v)
		}
		requests = append(requests, saveRequest{windowID: id, name: strings.TrimSpace(name)})
	}
	return requests, nil
}

func runEngine(cmd *cobra.Command, opts *runOptions) error {
	saves, err := parseSave(opts.save)
	if err != nil {
		return err
	}

	c, err := newContainer(cmd)
	if err != nil {
		return err
	}
	log := c.Logger

	host := memory.New()
	if opts.windowsFile != "" {
		host, err = memory.LoadFile(opts.windowsFile)
		if err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt := c.NewRuntime(host, c.ProcessOpener(ctx))
	defer func() {
		if err := rt.Close(); err != nil {
			log.Warn("failed to close companion channel", "error", err)
		}
	}()
	host.Subscribe(func(ev browser.Event) { rt.Engine.Dispatch(ev) })

	if err := rt.Engine.Start(ctx); err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}

	// The loop is not running yet, so saves are handled inline.
	for _, s := range saves {
		w, err := host.GetWindow(ctx, s.windowID, true)
		if err != nil {
			return fmt.Errorf("cannot save window %d: %w", s.windowID, err)
		}
		rt.Engine.Handle(ctx, engine.CreateRequest{
			SenderID: c.Config.Extension.ID,
			Name:     s.name,
			WindowID: s.windowID,
			Tabs:     w.Tabs,
			AutoSave: opts.autoSave || rt.Engine.DefaultAutoSave(),
		})
	}

	if opts.exitOnDisconnect {
		go func() {
			select {
			case <-rt.Connector.Done():
				log.Info("companion disconnected, stopping")
				stop()
			case <-ctx.Done():
			}
		}()
	}

	log.Info("running", "dataDir", c.DataDir, "windows", host.WindowCount())
	return rt.Engine.Run(ctx)
}

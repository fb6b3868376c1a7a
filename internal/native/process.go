package native

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/aki/amber/internal/core/logger"
)

// ProcessConfig describes how to launch the companion.
type ProcessConfig struct {
	// Name is the host name, e.g. com.paysonwallach.amber.
	Name string
	// ExtensionID is passed to the host as browsers do.
	ExtensionID string
	// ManifestDirs are searched for <Name>.json when Command is empty.
	ManifestDirs []string
	// Command overrides the manifest; extra arguments are appended to it.
	Command []string
	// Env is added to the inherited environment.
	Env []string
	// StopTimeout bounds the wait for the host to exit after its stdin closes.
	StopTimeout time.Duration
}

// ResolveCommand returns the argv used to start the companion: the manifest
// path followed by the manifest file and the extension id, the way Firefox
// launches hosts.
func ResolveCommand(cfg ProcessConfig) ([]string, error) {
	if len(cfg.Command) > 0 {
		args := append([]string(nil), cfg.Command...)
		return append(args, cfg.ExtensionID), nil
	}

	m, err := FindManifest(cfg.Name, cfg.ManifestDirs)
	if err != nil {
		return nil, err
	}
	if !m.Allows(cfg.ExtensionID) {
		return nil, fmt.Errorf("manifest %s does not allow extension %s", m.File, cfg.ExtensionID)
	}
	return []string{m.Executable(), m.File, cfg.ExtensionID}, nil
}

// ProcessPort is a Port over a child process's stdin and stdout.
type ProcessPort struct {
	*StreamPort

	cmd         *exec.Cmd
	stdin       io.WriteCloser
	waited      chan struct{}
	waitErr     error
	stopTimeout time.Duration
}

// StartProcess launches the companion. Its stderr is forwarded to the logger.
func StartProcess(ctx context.Context, cfg ProcessConfig, log logger.Logger) (*ProcessPort, error) {
	argv, err := ResolveCommand(cfg)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = append(os.Environ(), cfg.Env...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("attaching stdin: %w", err)
	}
	// A plain pipe rather than StdoutPipe: Wait must not close the read end
	// while frames are still being consumed.
	stdout, stdoutW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("attaching stdout: %w", err)
	}
	cmd.Stdout = stdoutW
	// Same for stderr, so the trailing lines survive Wait.
	stderr, stderrW, err := os.Pipe()
	if err != nil {
		_ = stdout.Close()
		_ = stdoutW.Close()
		return nil, fmt.Errorf("attaching stderr: %w", err)
	}
	cmd.Stderr = stderrW

	if err := cmd.Start(); err != nil {
		for _, f := range []*os.File{stdout, stdoutW, stderr, stderrW} {
			_ = f.Close()
		}
		return nil, fmt.Errorf("starting %s: %w", argv[0], err)
	}
	_ = stdoutW.Close()
	_ = stderrW.Close()
	log.Info("companion started", "command", argv[0], "pid", cmd.Process.Pid)

	stopTimeout := cfg.StopTimeout
	if stopTimeout <= 0 {
		stopTimeout = 5 * time.Second
	}

	p := &ProcessPort{
		StreamPort:  NewStreamPort(stdout, stdin, stdout),
		cmd:         cmd,
		stdin:       stdin,
		waited:      make(chan struct{}),
		stopTimeout: stopTimeout,
	}

	stderrLog := log.With("stream", "companion-stderr")
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		defer stderr.Close()
		scanner := bufio.NewScanner(stderr)
		scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)
		for scanner.Scan() {
			stderrLog.Debug(scanner.Text())
		}
	}()

	go func() {
		p.waitErr = cmd.Wait()
		// A leftover child may hold stderr open; do not wait on it forever.
		select {
		case <-drained:
		case <-time.After(stopTimeout):
		}
		close(p.waited)
		log.Info("companion exited", "error", p.waitErr)
	}()

	return p, nil
}

// Pid returns the companion's process id.
func (p *ProcessPort) Pid() int {
	return p.cmd.Process.Pid
}

// Close closes the companion's stdin, which asks it to exit, and kills it if
// it has not exited within the stop timeout.
func (p *ProcessPort) Close() error {
	_ = p.StreamPort.Close()
	_ = p.stdin.Close()

	select {
	case <-p.waited:
	case <-time.After(p.stopTimeout):
		_ = p.cmd.Process.Kill()
		<-p.waited
	}

	var exitErr *exec.ExitError
	if p.waitErr != nil && !errors.As(p.waitErr, &exitErr) {
		return p.waitErr
	}
	return nil
}

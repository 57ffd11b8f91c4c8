// Package tuitest drives a compiled TUI binary inside a pseudo terminal and
// records what it draws, so integration tests can assert on rendered frames
// without a real terminal attached.
package tuitest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/creack/pty"
)

const (
	defaultCols    = 120
	defaultRows    = 32
	defaultTimeout = 5 * time.Second
)

// Keystroke is one scripted input: wait After, then send Send to the PTY.
type Keystroke struct {
	After time.Duration
	Send  []byte
}

// Session describes a program run: the command to spawn, its terminal size,
// and the keystrokes to replay against it.
type Session struct {
	Command          []string
	Dir              string
	Env              []string
	Cols             int
	Rows             int
	Script           []Keystroke
	Timeout          time.Duration
	AllowedExitCodes []int
	AllowInterrupt   bool
}

// Capture holds the raw terminal stream plus the frames parsed out of it.
type Capture struct {
	Raw     []byte
	Frames  []Frame
	Elapsed time.Duration
}

// Last returns the final parsed frame; false when nothing was rendered.
func (c *Capture) Last() (Frame, bool) {
	if c == nil || len(c.Frames) == 0 {
		return Frame{}, false
	}
	return c.Frames[len(c.Frames)-1], true
}

// Play spawns the session's command inside a PTY, replays the script, and
// captures every byte the program writes until it exits.
func Play(ctx context.Context, session Session) (*Capture, error) {
	if len(session.Command) == 0 {
		return nil, errors.New("tuitest: command is required")
	}
	cols := session.Cols
	if cols <= 0 {
		cols = defaultCols
	}
	rows := session.Rows
	if rows <= 0 {
		rows = defaultRows
	}
	timeout := session.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, session.Command[0], session.Command[1:]...)
	cmd.Dir = session.Dir
	cmd.Env = terminalEnv(session.Env)

	allowed := map[int]struct{}{0: {}}
	for _, code := range session.AllowedExitCodes {
		allowed[code] = struct{}{}
	}

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
	if err != nil {
		return nil, fmt.Errorf("tuitest: start program: %w", err)
	}
	defer func() { _ = ptmx.Close() }()

	var output bytes.Buffer
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		answer := newAutoAnswer(ptmx)
		buf := make([]byte, 4096)
		for {
			n, readErr := ptmx.Read(buf)
			if n > 0 {
				chunk := buf[:n]
				answer.Process(chunk)
				_, _ = output.Write(chunk)
			}
			if readErr != nil {
				return
			}
		}
	}()

	started := time.Now()
	for _, stroke := range session.Script {
		if stroke.After > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("tuitest: context cancelled mid-script: %w", ctx.Err())
			case <-time.After(stroke.After):
			}
		}
		if len(stroke.Send) > 0 {
			if _, err := ptmx.Write(stroke.Send); err != nil {
				return nil, fmt.Errorf("tuitest: write input: %w", err)
			}
		}
	}

	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	select {
	case err := <-exited:
		if err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				if _, ok := allowed[exitErr.ExitCode()]; ok {
					break
				}
			}
			if session.AllowInterrupt && strings.Contains(err.Error(), "signal: interrupt") {
				break
			}
			return nil, fmt.Errorf("tuitest: program exited with error: %w", err)
		}
	case <-ctx.Done():
		return nil, fmt.Errorf("tuitest: timeout waiting for program exit: %w", ctx.Err())
	}

	// Closing the PTY unblocks the reader so it can drain.
	_ = ptmx.Close()
	<-drained

	raw := output.Bytes()
	return &Capture{
		Raw:     raw,
		Frames:  parseFrames(raw),
		Elapsed: time.Since(started),
	}, nil
}

// terminalEnv layers the extra variables over the current environment and
// guarantees a color-capable TERM.
func terminalEnv(extra []string) []string {
	env := append(os.Environ(), extra...)
	for _, entry := range env {
		if strings.HasPrefix(entry, "TERM=") {
			return env
		}
	}
	return append(env, "TERM=xterm-256color")
}

var (
	// Enter sends a carriage return.
	Enter = []byte{'\r'}
	// CtrlC asks the program to quit.
	CtrlC = []byte{3}
	// Esc backs out of the current view or overlay.
	Esc = []byte{27}
)

package termtest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/creack/pty"
)

type options struct {
	cols, rows uint16
	env        []string
	dir        string
	timeout    time.Duration
}

type Option func(*options)

func WithSize(cols, rows uint16) Option {
	return func(o *options) {
		o.cols = cols
		o.rows = rows
	}
}

func WithEnv(env ...string) Option {
	return func(o *options) {
		o.env = append(o.env, env...)
	}
}

func WithDir(dir string) Option {
	return func(o *options) {
		o.dir = dir
	}
}

func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// Term is a command running on the slave side of a pseudo-terminal.
type Term struct {
	t    testing.TB
	ptmx *os.File
	cmd  *exec.Cmd
	done chan struct{}
	opts options

	mu  sync.Mutex
	out bytes.Buffer
}

// exec.Command uses exec.LookPath which reads PATH from parent process.
// To isolate tests from parent's PATH, resolve commands using provided env.
func lookPathIn(name string, env []string) (string, error) {
	if strings.Contains(name, "/") {
		return name, nil
	}
	var path string
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			path = e[5:]
			break
		}
	}
	if path == "" {
		return "", fmt.Errorf("PATH not set in environment")
	}
	for dir := range strings.SplitSeq(path, ":") {
		p := dir + "/" + name
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%q not found in PATH", name)
}

func New(t testing.TB, command []string, opts ...Option) *Term {
	t.Helper()

	o := options{
		cols:    80,
		rows:    24,
		timeout: 5 * time.Second,
	}
	for _, fn := range opts {
		fn(&o)
	}

	binPath, err := lookPathIn(command[0], o.env)
	if err != nil {
		t.Fatalf("termtest: lookup %q: %v", command[0], err)
	}
	cmd := &exec.Cmd{
		Path: binPath,
		Args: command,
		Env:  o.env,
	}
	if o.dir != "" {
		cmd.Dir = o.dir
	}

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Cols: o.cols, Rows: o.rows})
	if err != nil {
		t.Fatalf("termtest: start pty: %v", err)
	}

	tm := &Term{
		t:    t,
		ptmx: ptmx,
		cmd:  cmd,
		done: make(chan struct{}),
		opts: o,
	}

	go tm.readLoop()

	t.Cleanup(func() {
		cmd.Process.Signal(os.Kill)
		cmd.Wait()
		ptmx.Close()
		<-tm.done
	})

	return tm
}

func (tm *Term) readLoop() {
	buf := make([]byte, 32*1024)
	for {
		n, err := tm.ptmx.Read(buf)
		if n > 0 {
			tm.mu.Lock()
			tm.out.Write(buf[:n])
			tm.mu.Unlock()
		}
		if err != nil {
			break
		}
	}
	close(tm.done)
}

// Type writes s to the terminal as if typed.
func (tm *Term) Type(s string) {
	tm.t.Helper()
	if _, err := tm.ptmx.Write([]byte(s)); err != nil {
		tm.t.Fatalf("termtest: type: %v", err)
	}
}

// Output returns everything the command has written so far, with the
// terminal's CRLF line endings folded to LF.
func (tm *Term) Output() string {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return strings.ReplaceAll(tm.out.String(), "\r\n", "\n")
}

type waitOptions struct {
	timeout  time.Duration
	interval time.Duration
}

type WaitOption func(*waitOptions)

func WaitTimeout(d time.Duration) WaitOption {
	return func(o *waitOptions) {
		o.timeout = d
	}
}

func WaitInterval(d time.Duration) WaitOption {
	return func(o *waitOptions) {
		o.interval = d
	}
}

func (tm *Term) WaitFor(substr string, opts ...WaitOption) {
	tm.t.Helper()

	wo := waitOptions{
		timeout:  tm.opts.timeout,
		interval: 50 * time.Millisecond,
	}
	for _, fn := range opts {
		fn(&wo)
	}

	deadline := time.After(wo.timeout)
	ticker := time.NewTicker(wo.interval)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			tm.t.Fatalf("termtest: WaitFor(%q) timed out after %v\noutput:\n%s", substr, wo.timeout, tm.Output())
		case <-ticker.C:
			if strings.Contains(tm.Output(), substr) {
				return
			}
		}
	}
}

// Wait blocks until the command exits and returns its exit code.
func (tm *Term) Wait() int {
	tm.t.Helper()

	select {
	case <-tm.done:
	case <-time.After(tm.opts.timeout):
		tm.t.Fatalf("termtest: command did not exit after %v\noutput:\n%s", tm.opts.timeout, tm.Output())
	}
	err := tm.cmd.Wait()
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	tm.t.Fatalf("termtest: wait: %v", err)
	return -1
}

func (tm *Term) Done() <-chan struct{} {
	return tm.done
}

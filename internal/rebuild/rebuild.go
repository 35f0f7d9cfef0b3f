// Package rebuild drives the external index generator. At most one
// rebuild runs per process; concurrent requests are rejected outright
// rather than queued or merged.
package rebuild

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"

	"tagnav/internal/cache"
)

// ErrBusy means a rebuild is already in flight. Callers show a status
// message; the request is not queued.
var ErrBusy = errors.New("rebuild already running")

// Runner executes the generator for one directory. It is injectable so
// tests run without a ctags binary.
type Runner func(ctx context.Context, dir string, args []string) error

// CompletionStore is the part of the completion store the orchestrator
// needs: rebuilt indexes invalidate the derived word list.
type CompletionStore interface {
	Clear() error
}

// Request describes one rebuild batch.
type Request struct {
	// Paths are files or directories to rebuild indexes for. A file is
	// rebuilt relative to its directory.
	Paths []string

	// TagFile is the index filename written in each directory.
	TagFile string

	// Recursive passes the directory to the generator for a recursive
	// scan; otherwise the orchestrator enumerates source files itself.
	Recursive bool

	// Command is the generator invocation; its first field is the
	// binary. Empty means "ctags".
	Command string
}

// Result reports a finished rebuild. Err is set when the batch aborted;
// Built lists the index files written before the failure (fail-fast: a
// failing path stops the remaining batch).
type Result struct {
	Built []string
	Err   error
}

// Orchestrator serializes index generation and invalidates derived
// state on success. Construct one per process.
type Orchestrator struct {
	cache       *cache.Service
	completions CompletionStore
	logger      *slog.Logger
	run         Runner
	busy        atomic.Bool
}

// New returns an Orchestrator invoking the generator via os/exec.
// completions may be nil.
func New(svc *cache.Service, completions CompletionStore, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		cache:       svc,
		completions: completions,
		logger:      logger,
		run:         execRunner,
	}
}

// SetRunner replaces the generator invocation, for tests.
func (o *Orchestrator) SetRunner(run Runner) { o.run = run }

// Running reports whether a rebuild is in flight.
func (o *Orchestrator) Running() bool { return o.busy.Load() }

// Start launches the rebuild in the background and returns a channel
// that receives exactly one Result. It returns ErrBusy while another
// rebuild is running.
func (o *Orchestrator) Start(ctx context.Context, req Request) (<-chan Result, error) {
	if !o.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}

	ch := make(chan Result, 1)
	go func() {
		defer o.busy.Store(false)
		ch <- o.rebuild(ctx, req)
	}()
	return ch, nil
}

func (o *Orchestrator) rebuild(ctx context.Context, req Request) Result {
	var built []string

	for _, path := range req.Paths {
		dir := path
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			dir = filepath.Dir(path)
		}

		o.logger.Info("building tag index", "dir", dir, "tag_file", req.TagFile)

		args, err := o.args(req, dir)
		if err == nil {
			err = o.run(ctx, dir, args)
		}
		if err != nil {
			err = fmt.Errorf("building index for %s: %w", dir, err)
			o.logger.Error("tag index build failed", "dir", dir, "error", err)
			return Result{Built: built, Err: err}
		}

		tagPath := filepath.Join(dir, req.TagFile)
		o.cache.Invalidate(dir)
		if o.completions != nil {
			if cerr := o.completions.Clear(); cerr != nil {
				o.logger.Warn("clearing completion store failed", "error", cerr)
			}
		}
		built = append(built, tagPath)
		o.logger.Info("finished building tag index", "path", tagPath)
	}

	return Result{Built: built}
}

func (o *Orchestrator) args(req Request, dir string) ([]string, error) {
	command := req.Command
	if command == "" {
		command = "ctags"
	}

	args := append(strings.Fields(command), "-f", req.TagFile)
	if req.Recursive {
		return append(args, "-R", "."), nil
	}

	files, err := SourceFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no source files under %s", dir)
	}
	return append(args, files...), nil
}

// execRunner invokes the generator as a subprocess in dir.
func execRunner(ctx context.Context, dir string, args []string) error {
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = dir

	output, err := cmd.CombinedOutput()
	if err != nil {
		if msg := firstLine(output); msg != "" {
			return fmt.Errorf("%s: %s", err, msg)
		}
		return err
	}
	return nil
}

// Available reports whether the generator binary from command (default
// ctags) runs and looks like a ctags implementation.
func Available(command string) bool {
	name := "ctags"
	if fields := strings.Fields(command); len(fields) > 0 {
		name = fields[0]
	}

	output, err := exec.Command(name, "--version").Output()
	if err != nil {
		return false
	}
	return strings.Contains(string(output), "Ctags")
}

func firstLine(output []byte) string {
	s := strings.TrimSpace(string(output))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cybermatrixco/strand/internal/config"
	"github.com/cybermatrixco/strand/internal/diag"
	"github.com/cybermatrixco/strand/internal/engine"
	"github.com/cybermatrixco/strand/internal/evallog"
	"github.com/cybermatrixco/strand/internal/host"
	"github.com/cybermatrixco/strand/internal/reactor"
	"github.com/cybermatrixco/strand/internal/script"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	Root     *RootOptions
	Database string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{Root: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <config.yaml>",
		Short: "Load a configuration and drive its run entries to completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd.Context(), opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "record evaluations to this SQLite database")

	return cmd
}

func runRun(ctx context.Context, opts *RunOptions, cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	rt := engine.NewRuntime(cfg.StackSize)
	ns := script.NewNamespace()
	script.RegisterCore(ns)
	loop := reactor.New()
	host.Install(ns, rt, loop)
	resolver := reactor.NewResolver()
	resolverTimeout := time.Duration(cfg.ResolverTimeoutMS) * time.Millisecond

	if err := evalStartup(cfg, rt, ns); err != nil {
		return err
	}

	if len(cfg.Run) == 0 {
		return nil
	}

	var store *evallog.Store
	if opts.Database != "" {
		store, err = evallog.Open(opts.Database)
		if err != nil {
			return fmt.Errorf("opening evaluation log: %w", err)
		}
		defer store.Close()
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var tasks []*engine.Task
	var failed int
	remaining := len(cfg.Run)

	for i, src := range cfg.Run {
		name := fmt.Sprintf("%s:run[%d]", cfg.Path(), i)
		prog, err := script.Compile(src, name)
		if err != nil {
			return fmt.Errorf("compiling %s: %w", name, err)
		}

		task := engine.NewTask(rt, ns)
		task.SetResolver(resolver, resolverTimeout)
		tasks = append(tasks, task)
		recordBegin(ctx, store, task, name)

		var wake *reactor.Event
		wake = loop.NewEvent(func() {
			if !rt.Step(task, prog, wake) {
				return
			}
			finishTask(ctx, opts, store, task, name, &failed)
			remaining--
			if remaining == 0 {
				loop.Stop()
			}
		})
		wake.Post()
	}

	err = loop.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	for _, task := range tasks {
		if task.State() == engine.TaskPending {
			slog.Info("terminating pending task", "task", task.ID())
			if cerr := task.Close(); cerr != nil {
				slog.Error("task close failed", "task", task.ID(), "error", cerr)
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d run entries failed", failed, len(cfg.Run))
	}
	return nil
}

// evalStartup evaluates the configuration-time sources synchronously.
// Suspension is not allowed here, a startup script that calls sleep or
// resolve fails with a diagnostic.
func evalStartup(cfg *config.Config, rt *engine.Runtime, ns *script.Namespace) error {
	sources, err := cfg.Sources()
	if err != nil {
		return err
	}
	for _, src := range sources {
		prog, err := script.Compile(src.Text, src.Name)
		if err != nil {
			return fmt.Errorf("compiling %s: %w", src.Name, err)
		}
		task := engine.NewTask(rt, ns)
		rt.Step(task, prog, nil)
		if err := task.Err(); err != nil {
			return fmt.Errorf("startup script failed: %s", diag.Format(err))
		}
		slog.Debug("startup script evaluated", "source", src.Name)
	}
	return nil
}

func recordBegin(ctx context.Context, store *evallog.Store, task *engine.Task, name string) {
	if store == nil {
		return
	}
	if err := store.Begin(ctx, task.ID(), name, time.Now()); err != nil {
		slog.Error("recording evaluation start", "task", task.ID(), "error", err)
	}
}

// finishTask reports and optionally records the outcome of a completed task.
func finishTask(ctx context.Context, opts *RunOptions, store *evallog.Store, task *engine.Task, name string, failed *int) {
	outcome := evallog.OutcomeOK
	var result, diagnostic string

	switch err := task.Err(); {
	case engine.IsTerminated(err):
		outcome = evallog.OutcomeTerminated
		slog.Info("task terminated", "task", task.ID(), "script", name)
	case err != nil:
		outcome = evallog.OutcomeError
		diagnostic = diag.Format(err)
		*failed++
		slog.Error("script error", "task", task.ID(), "script", name, "error", diagnostic)
	default:
		result = script.Render(task.Value())
		slog.Info("task done", "task", task.ID(), "script", name, "steps", task.Steps())
		if err := printValue(os.Stdout, opts.Root.Format, task.Value()); err != nil {
			slog.Error("writing result", "error", err)
		}
	}

	if store == nil {
		return
	}
	if err := store.Finish(ctx, task.ID(), task.Steps(), outcome, result, diagnostic, time.Now()); err != nil {
		slog.Error("recording evaluation finish", "task", task.ID(), "error", err)
	}
}

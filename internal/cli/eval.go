package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cybermatrixco/strand/internal/diag"
	"github.com/cybermatrixco/strand/internal/engine"
	"github.com/cybermatrixco/strand/internal/host"
	"github.com/cybermatrixco/strand/internal/reactor"
	"github.com/cybermatrixco/strand/internal/script"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	Root      *RootOptions
	StackSize int
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{Root: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval <script>",
		Short: "Evaluate a script file synchronously and print its value",
		Long: "Evaluates a single script without a reactor. Suspension is not\n" +
			"available: calls to sleep or resolve fail.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(opts, args[0])
		},
	}

	cmd.Flags().IntVar(&opts.StackSize, "stack-size", engine.DefaultStackSize, "per-task stack size in bytes")

	return cmd
}

func runEval(opts *EvalOptions, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading script: %w", err)
	}

	prog, err := script.Compile(string(src), path)
	if err != nil {
		return fmt.Errorf("compiling %s: %w", path, err)
	}

	rt := engine.NewRuntime(opts.StackSize)
	ns := script.NewNamespace()
	script.RegisterCore(ns)
	host.Install(ns, rt, reactor.New())

	task := engine.NewTask(rt, ns)
	rt.Step(task, prog, nil)
	if err := task.Err(); err != nil {
		return fmt.Errorf("script error: %s", diag.Format(err))
	}

	return printValue(os.Stdout, opts.Root.Format, task.Value())
}

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/cybermatrixco/strand/internal/diag"
	"github.com/cybermatrixco/strand/internal/engine"
	"github.com/cybermatrixco/strand/internal/host"
	"github.com/cybermatrixco/strand/internal/reactor"
	"github.com/cybermatrixco/strand/internal/script"
)

// NewReplCommand creates the repl command.
func NewReplCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive evaluation session",
		Long: "Reads statements line by line and evaluates them against a\n" +
			"persistent namespace. Suspension is not available in the repl.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(rootOpts)
		},
	}
}

func runRepl(opts *RootOptions) error {
	rt := engine.NewRuntime(engine.DefaultStackSize)
	ns := script.NewNamespace()
	script.RegisterCore(ns)
	host.Install(ns, rt, reactor.New())

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	histPath := historyPath()
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}
	defer saveHistory(line, histPath)

	fmt.Println("strand repl (ctrl-d to exit)")
	for n := 0; ; n++ {
		input, err := line.Prompt("> ")
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(input) == "" {
			continue
		}
		line.AppendHistory(input)

		prog, err := script.Compile(input, fmt.Sprintf("repl[%d]", n))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}

		task := engine.NewTask(rt, ns)
		rt.Step(task, prog, nil)
		if err := task.Err(); err != nil {
			fmt.Fprintln(os.Stderr, diag.Format(err))
			continue
		}
		if _, ok := task.Value().(script.Null); ok {
			continue
		}
		if err := printValue(os.Stdout, opts.Format, task.Value()); err != nil {
			return err
		}
	}
}

func historyPath() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, ".strand_history")
}

func saveHistory(line *liner.State, path string) {
	if path == "" {
		return
	}
	f, err := os.Create(path)
	if err != nil {
		return
	}
	defer f.Close()
	line.WriteHistory(f)
}

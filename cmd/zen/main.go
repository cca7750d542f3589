// Command zen is the compiler driver (§6): it exposes the five CLI
// modes (bare REPL, run, build, check, and the supplemented watch
// mode) over the C2-C9 pipeline. Grounded on the teacher's
// cmd/ailang/main.go command dispatch, rebuilt on spf13/cobra per the
// expanded ambient stack rather than the teacher's raw flag package.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/zenlang/zen/internal/zerrors"
)

var (
	// Version info, set by ldflags during build, exactly as the
	// teacher's cmd/ailang/main.go wires its own Version/Commit/BuildTime.
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"

	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

var (
	outPath    string
	format     string
	zenHomeOpt string
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		reportAndExit(err)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "zen [file.zen]",
		Short:        "The Zen compiler driver",
		Version:      version,
		SilenceUsage: true,
		// A bare `zen` with no file enters the REPL; `zen file.zen`
		// JIT-runs it; `zen file.zen -o out` / `zen -o out file.zen`
		// builds an executable — §6's first three modes collapse onto
		// the root command so `-o`'s position doesn't matter.
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runREPL(cmd)
			}
			if outPath != "" {
				return runBuild(args[0], outPath)
			}
			return runJIT(args[0])
		},
	}
	root.PersistentFlags().StringVarP(&outPath, "output", "o", "", "compile to an executable instead of JIT-running")
	root.PersistentFlags().StringVar(&format, "format", "text", "diagnostic/trace output format: text|yaml")
	root.PersistentFlags().StringVar(&zenHomeOpt, "zen-home", "", "override ZEN_HOME for this invocation")

	root.AddCommand(newRunCmd(), newBuildCmd(), newReplCmd(), newCheckCmd(), newWatchCmd())
	root.SetVersionTemplate(versionString())
	return root
}

func reportAndExit(err error) {
	if rep, ok := zerrors.As(err); ok {
		fmt.Fprint(os.Stderr, rep.Render(""))
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
	os.Exit(1)
}

func versionString() string {
	s := fmt.Sprintf("zen %s\n", bold(version))
	if commit != "unknown" {
		s += fmt.Sprintf("commit: %s\n", commit)
	}
	if buildTime != "unknown" {
		s += fmt.Sprintf("built:  %s\n", buildTime)
	}
	return s
}

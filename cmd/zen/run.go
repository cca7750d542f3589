package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <file.zen>",
		Short: "Type-check, monomorphize, codegen, and JIT-run main",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJIT(args[0])
		},
	}
}

// runJIT implements §6's second CLI mode. The LLVM binding layer is an
// external collaborator (§1): rather than embedding one, the driver
// shells out to the system `lli` IR interpreter against the verified
// module's rendered text, which honors the same exit-code contract a
// cgo-linked JIT would (`main`'s integer return, 0 for void). A `main`
// returning Result is not run: the JIT cannot return a struct from
// `main`, so runJIT prints a warning pointing at `zen build` (object
// compilation handles it) and exits 0.
func runJIT(path string) error {
	prog, err := loadProgram(path)
	if err != nil {
		return err
	}
	mod, _, err := compileToModule(prog)
	if err != nil {
		return err
	}
	for _, fn := range mod.Functions {
		if fn.Name == "main" && fn.ReturnType == "{i64, ptr}" {
			fmt.Fprintf(os.Stderr, "%s: the JIT cannot return a struct from main; use `zen build` for a Result-returning main\n", yellow("warning"))
			return nil
		}
	}

	tmp, err := os.CreateTemp("", "zen-*.ll")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(mod.Render()); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	lli, err := exec.LookPath("lli")
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: no `lli` on PATH; compiled IR written to %s\n", yellow("warning"), tmp.Name())
		return nil
	}
	runCmd := exec.Command(lli, tmp.Name())
	runCmd.Stdout = os.Stdout
	runCmd.Stderr = os.Stderr
	runCmd.Stdin = os.Stdin
	if err := runCmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			os.Exit(exitErr.ExitCode())
		}
		return err
	}
	return nil
}

func defaultBinaryName(source string) string {
	base := filepath.Base(source)
	return base[:len(base)-len(filepath.Ext(base))]
}

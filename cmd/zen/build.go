package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newBuildCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "build <file.zen>",
		Short: "Compile to an object, link, and write an executable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				out = defaultBinaryName(args[0])
			}
			return runBuild(args[0], out)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "executable path")
	return cmd
}

// runBuild implements §6's third CLI mode: compile to an object via the
// system C compiler acting as LLVM's target machine + linker (`cc
// -no-pie -lm`), writing both the executable and `<out>.ll`.
func runBuild(source, out string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	prog, err := loadProgram(source)
	if err != nil {
		return err
	}
	mod, _, err := compileToModule(prog)
	if err != nil {
		return err
	}

	resolvedOut := outputDir(cfg, out)
	if dir := filepath.Dir(resolvedOut); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	llPath := resolvedOut + ".ll"
	if err := os.WriteFile(llPath, []byte(mod.Render()), 0o644); err != nil {
		return err
	}

	cc := "cc"
	if path, err := exec.LookPath("cc"); err == nil {
		cc = path
	}
	link := exec.Command(cc, "-no-pie", "-lm", "-o", resolvedOut, llPath)
	link.Stdout = os.Stdout
	link.Stderr = os.Stderr
	if err := link.Run(); err != nil {
		return fmt.Errorf("linking %s: %w", resolvedOut, err)
	}

	fmt.Printf("%s %s\n", green("built"), resolvedOut)
	return nil
}

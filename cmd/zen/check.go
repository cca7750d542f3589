package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file.zen>",
		Short: "Type-check a file without generating code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(args[0])
		},
	}
}

// runCheck runs the pipeline through C5 (resolve, comptime, self-res,
// type-check) and reports success without reaching C7/C9, mirroring
// the teacher's `ailang check` command.
func runCheck(path string) error {
	prog, err := loadProgram(path)
	if err != nil {
		return err
	}
	if _, _, err := checkProgram(prog); err != nil {
		return err
	}
	fmt.Printf("%s %s type-checks\n", green("✓"), path)
	return nil
}

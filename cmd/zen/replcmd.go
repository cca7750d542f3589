package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
)

var dim = color.New(color.Faint).SprintFunc()

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start the interactive REPL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(cmd)
		},
	}
}

// runREPL implements §6's first CLI mode: read a line, compile the
// fragment, print the compiled module's LLVM IR; `exit`/`quit`/`help`/
// `clear` are recognized commands, an empty line is a no-op. Grounded
// on internal/repl/repl.go's liner-backed Start loop (history file,
// liner.SetMultiLineMode, EOF handling), swapping AILANG evaluation for
// printing the compiled IR per this driver's contract.
func runREPL(cmd *cobra.Command) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetMultiLineMode(true)

	historyFile := filepath.Join(os.TempDir(), ".zen_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	fmt.Printf("%s %s\n", bold("zen"), bold(version))
	fmt.Println(dim("Type help for help, exit or quit to leave"))
	fmt.Println()

	for {
		input, err := line.Prompt("zen> ")
		if err == io.EOF {
			fmt.Println(green("goodbye"))
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
			continue
		}

		switch input {
		case "":
			continue
		case "exit", "quit":
			fmt.Println(green("goodbye"))
			goto done
		case "help":
			printREPLHelp()
			continue
		case "clear":
			fmt.Print("\033[H\033[2J")
			continue
		}

		line.AppendHistory(input)
		replCompile(input)
	}

done:
	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
	return nil
}

func replCompile(fragment string) {
	prog, err := ParseFragment(fragment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
		return
	}
	mod, _, err := compileToModule(prog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
		return
	}
	fmt.Println(mod.Render())
}

func printREPLHelp() {
	fmt.Println(bold("Commands:"))
	fmt.Printf("  %s    leave the REPL\n", cyan("exit, quit"))
	fmt.Printf("  %s          show this message\n", cyan("help"))
	fmt.Printf("  %s         clear the screen\n", cyan("clear"))
	fmt.Println()
	fmt.Println("Any other line is compiled as a program fragment and its LLVM IR is printed.")
}

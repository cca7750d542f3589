package main

import (
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <file.zen>",
		Short: "Recompile and reprint IR whenever the file changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchFile(args[0])
		},
	}
}

// watchFile is a supplemented feature (§D): the teacher's
// cmd/ailang/main.go has a `watch` command, which the Rust source this
// spec distills from does not; we keep it, grounded on fsnotify rather
// than the teacher's polling loop.
func watchFile(path string) error {
	compileAndReport(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(path); err != nil {
		return err
	}

	fmt.Printf("%s watching %s (ctrl-c to stop)\n", cyan("→"), path)
	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				compileAndReport(path)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("watch error"), err)
		}
	}
}

func compileAndReport(path string) {
	prog, err := loadProgram(path)
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

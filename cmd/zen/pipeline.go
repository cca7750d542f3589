package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zenlang/zen/internal/check"
	"github.com/zenlang/zen/internal/codegen"
	"github.com/zenlang/zen/internal/comptime"
	"github.com/zenlang/zen/internal/llvmir"
	"github.com/zenlang/zen/internal/mono"
	"github.com/zenlang/zen/internal/selfres"
	"github.com/zenlang/zen/internal/zast"
	"github.com/zenlang/zen/internal/zmodule"
)

// checkProgram runs C2-C5 only (resolve, comptime, self-res, type
// check) over a freshly parsed root program, stopping short of
// monomorphization and codegen — what `zen check` needs.
func checkProgram(root *zast.Program) (*zast.Program, *check.Checker, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if home := zenHomeOpt; home != "" {
		os.Setenv("ZEN_HOME", home)
	}

	resolver := zmodule.NewResolver(sourceParser{})
	resolver.AddSearchPaths(cfg.SearchPaths...)
	resolved, err := resolver.Resolve(root)
	if err != nil {
		return nil, nil, err
	}

	expanded, err := comptime.New().Run(resolved)
	if err != nil {
		return nil, nil, err
	}

	substituted := selfres.Resolve(expanded)

	checker := check.New()
	checked, err := checker.Run(substituted)
	if err != nil {
		return nil, nil, err
	}
	return checked, checker, nil
}

// compileToModule runs the full C2-C9 pipeline over a freshly parsed
// root program, in the order §2's overview lays out: resolve imports,
// expand comptime blocks, substitute Self, type-check, monomorphize,
// lower pattern matches (inline, inside codegen) and generate LLVM IR.
func compileToModule(root *zast.Program) (*llvmir.Module, *check.Checker, error) {
	checked, checker, err := checkProgram(root)
	if err != nil {
		return nil, nil, err
	}

	specialized, err := mono.New(checker).Run(checked)
	if err != nil {
		return nil, nil, err
	}

	gen := codegen.New(checker.Behavior, checker)
	mod, err := gen.Run(specialized)
	if err != nil {
		return nil, nil, err
	}

	if os.Getenv("DEBUG_LLVM") != "" {
		fmt.Fprintln(os.Stderr, mod.Render())
	}
	if format == "yaml" {
		dumpTraceYAML(os.Stderr, mod)
	}
	return mod, checker, nil
}

// traceDump is the structural snapshot `--format yaml` prints: the
// module name and the names of its compiled functions. Decision trees
// and instance tables are not included.
type traceDump struct {
	Module    string   `yaml:"module"`
	Functions []string `yaml:"functions"`
}

func dumpTraceYAML(w *os.File, mod *llvmir.Module) {
	names := make([]string, len(mod.Functions))
	for i, fn := range mod.Functions {
		names[i] = fn.Name
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	_ = enc.Encode(traceDump{Module: mod.Name, Functions: names})
}

func loadProgram(path string) (*zast.Program, error) {
	return ParseSource(path)
}

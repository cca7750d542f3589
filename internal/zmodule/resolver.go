// Package zmodule implements the module resolver (C2): it discovers
// files for dotted module paths, parses each exactly once, merges
// declarations into a single flat program, and rewrites qualified
// references to their canonical form.
package zmodule

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/zenlang/zen/internal/zast"
	"github.com/zenlang/zen/internal/zerrors"
)

// Parser is the external collaborator (§1 out of scope) that turns
// source text into a Program. The resolver depends only on this narrow
// interface so it never needs to know about lexing/parsing.
type Parser interface {
	ParseFile(path string) (*zast.Program, error)
}

// loadedModule is one parsed, not-yet-merged import.
type loadedModule struct {
	alias string
	path  string // dotted canonical path, e.g. "collections.list"
	prog  *zast.Program
}

// Resolver discovers, parses, and merges ModuleImport declarations.
// It is reused across an analysis (LSP-style concurrent sessions each
// construct their own Resolver per §5) and is therefore guarded for
// concurrent use internally even though the core pipeline itself is
// single-threaded; this lets one Resolver be shared when a driver mode
// intentionally fans out (e.g. `zen check` over many files at once).
type Resolver struct {
	parser      Parser
	searchPaths []string

	mu        sync.Mutex
	loaded    map[string]*loadedModule // canonical path -> parsed module
	loading   map[string]bool          // cycle guard: currently on the load stack
	loadOrder []string                 // leaves-first order modules finished loading in

	group singleflight.Group // dedupes concurrent loads of the same path
}

// NewResolver builds a Resolver with the default search-path list:
// CWD, ./lib, ./modules, ./stdlib, plus ZEN_HOME/stdlib, ZEN_HOME/std
// and ZEN_HOME/lib if ZEN_HOME is set (§4.2).
func NewResolver(p Parser) *Resolver {
	paths := []string{".", "./lib", "./modules", "./stdlib"}
	if home := os.Getenv("ZEN_HOME"); home != "" {
		paths = append(paths,
			filepath.Join(home, "stdlib"),
			filepath.Join(home, "std"),
			filepath.Join(home, "lib"),
		)
	}
	return &Resolver{
		parser:      p,
		searchPaths: paths,
		loaded:      map[string]*loadedModule{},
		loading:     map[string]bool{},
	}
}

// AddSearchPaths appends extra directories to the search-path list
// (tried after the built-in defaults), for a driver-level config such
// as a project's `zen.toml` layering its own paths under ZEN_HOME.
func (r *Resolver) AddSearchPaths(paths ...string) {
	r.searchPaths = append(r.searchPaths, paths...)
}

// isBuiltinPath reports whether a dotted import path is a recognized
// built-in (`@std`, `@std.*`, `std.*`); these resolve to empty programs
// because their capabilities are registered directly by C5/C9.
func isBuiltinPath(path string) bool {
	return path == "@std" || strings.HasPrefix(path, "@std.") || strings.HasPrefix(path, "std.")
}

// locate finds the file backing a dotted module path: `path.zen` then
// `path/mod.zen`, tried across every search path in order.
func (r *Resolver) locate(path string) (string, []string, error) {
	rel := strings.ReplaceAll(path, ".", string(filepath.Separator))
	var tried []string
	for _, sp := range r.searchPaths {
		candidate := filepath.Join(sp, rel+".zen")
		tried = append(tried, candidate)
		if fileExists(candidate) {
			return candidate, tried, nil
		}
		candidate = filepath.Join(sp, rel, "mod.zen")
		tried = append(tried, candidate)
		if fileExists(candidate) {
			return candidate, tried, nil
		}
	}
	return "", tried, zerrors.Wrap(zerrors.New(zerrors.ModuleNotFound,
		"module not found: "+path, nil).WithData("tried", tried))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Resolve loads `root` and every module it (transitively) imports,
// merges all non-import declarations into one flat Program, and
// rewrites qualified references (`alias.name`) to their canonical form.
func (r *Resolver) Resolve(root *zast.Program) (*zast.Program, error) {
	aliasToModule := map[string]string{} // alias -> canonical dotted path

	for _, d := range root.Decls {
		imp, ok := d.(*zast.ModuleImportDecl)
		if !ok {
			continue
		}
		if _, err := r.load(imp.Path, nil); err != nil {
			return nil, err
		}
		aliasToModule[imp.Alias] = imp.Path
	}

	// Merge every transitively-loaded module's declarations, leaves
	// first, so a module never sees a forward reference to something
	// its own importer defines.
	var imports []*loadedModule
	for _, path := range r.loadOrder {
		imports = append(imports, r.loaded[path])
	}

	merged := &zast.Program{Pos: root.Pos}
	seen := map[string]bool{}
	addDecl := func(d zast.Decl) error {
		key := d.DeclName()
		if _, dup := seen[key]; dup {
			return zerrors.Wrap(zerrors.New(zerrors.ModuleDuplicate,
				"duplicate declaration after module merge: "+key, nil))
		}
		seen[key] = true
		merged.Decls = append(merged.Decls, d)
		return nil
	}

	for _, mod := range imports {
		for _, d := range mod.prog.Decls {
			if _, isImport := d.(*zast.ModuleImportDecl); isImport {
				continue
			}
			if err := addDecl(d); err != nil {
				return nil, err
			}
		}
	}
	for _, d := range root.Decls {
		if _, isImport := d.(*zast.ModuleImportDecl); isImport {
			continue
		}
		if err := addDecl(d); err != nil {
			return nil, err
		}
	}

	RewriteQualifiedRefs(merged, aliasToModule)
	return merged, nil
}

// load parses `path` (and its own imports, recursively) exactly once,
// returning nil for built-in paths. Cycles are detected via stack, the
// chain of paths being loaded by this call, before entering the
// singleflight group (whose Do blocks on a re-entrant call for the same
// key), and are non-fatal (§4.2's guarded-by-the-loaded-set policy): a
// cyclic re-import is simply skipped, relying on the first load to
// register the module's declarations.
func (r *Resolver) load(path string, stack map[string]bool) (*loadedModule, error) {
	if isBuiltinPath(path) {
		return nil, nil
	}
	if stack[path] {
		return nil, nil
	}
	next := map[string]bool{path: true}
	for p := range stack {
		next[p] = true
	}

	v, err, _ := r.group.Do(path, func() (interface{}, error) {
		r.mu.Lock()
		if mod, ok := r.loaded[path]; ok {
			r.mu.Unlock()
			return mod, nil
		}
		if r.loading[path] {
			// Cycle: not fatal, just don't recurse further.
			r.mu.Unlock()
			return (*loadedModule)(nil), nil
		}
		r.loading[path] = true
		r.mu.Unlock()

		defer func() {
			r.mu.Lock()
			delete(r.loading, path)
			r.mu.Unlock()
		}()

		file, _, ferr := r.locate(path)
		if ferr != nil {
			return nil, ferr
		}
		prog, perr := r.parser.ParseFile(file)
		if perr != nil {
			return nil, perr
		}

		mod := &loadedModule{path: path, prog: prog}

		// Recurse into this module's own imports first so everything
		// is merged leaves-first.
		for _, d := range prog.Decls {
			imp, ok := d.(*zast.ModuleImportDecl)
			if !ok {
				continue
			}
			if _, rerr := r.load(imp.Path, next); rerr != nil {
				return nil, rerr
			}
		}

		r.mu.Lock()
		r.loaded[path] = mod
		r.loadOrder = append(r.loadOrder, path)
		r.mu.Unlock()
		return mod, nil
	})
	if err != nil {
		return nil, err
	}
	mod, _ := v.(*loadedModule)
	return mod, nil
}

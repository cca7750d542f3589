package check

import "github.com/zenlang/zen/internal/ztype"

// VarInfo is one scope-stack entry (§4.5 Pass B).
type VarInfo struct {
	Type        ztype.Type
	Mutable     bool
	Initialized bool
}

// scope is one lexical scope's bindings (function, block, or match arm).
type scope map[string]*VarInfo

// scopeStack is the Pass-B symbol table: a stack of scopes, innermost
// last. Lookups walk from the top down, matching lexical shadowing.
type scopeStack struct {
	scopes []scope
}

func newScopeStack() *scopeStack {
	return &scopeStack{scopes: []scope{{}}}
}

func (s *scopeStack) push() { s.scopes = append(s.scopes, scope{}) }
func (s *scopeStack) pop()  { s.scopes = s.scopes[:len(s.scopes)-1] }

func (s *scopeStack) declare(name string, info *VarInfo) {
	s.scopes[len(s.scopes)-1][name] = info
}

func (s *scopeStack) lookup(name string) (*VarInfo, bool) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if v, ok := s.scopes[i][name]; ok {
			return v, true
		}
	}
	return nil, false
}

// snapshot saves the current bindings of the given names so they can be
// restored afterward (§4.8 "Scope discipline" — shadowed vars are saved
// around a match arm and restored after).
func (s *scopeStack) snapshot(names []string) map[string]*VarInfo {
	saved := map[string]*VarInfo{}
	for _, n := range names {
		if v, ok := s.lookup(n); ok {
			saved[n] = v
		}
	}
	return saved
}

func (s *scopeStack) restore(saved map[string]*VarInfo) {
	for n, v := range saved {
		s.declare(n, v)
	}
}

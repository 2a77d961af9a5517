// Package processtest provides a recording process.Runner for tests.
package processtest

import (
	"context"
	"strings"
	"sync"
)

type Fake struct {
	mu        sync.Mutex
	calls     [][]string
	errs      map[string]error
	available map[string]bool
}

func NewFake() *Fake {
	return &Fake{
		errs:      make(map[string]error),
		available: make(map[string]bool),
	}
}

// FailWith makes every command whose argv[0] is name return err.
func (f *Fake) FailWith(name string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[name] = err
}

func (f *Fake) SetAvailable(name string, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.available[name] = ok
}

func (f *Fake) Run(ctx context.Context, argv []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, append([]string(nil), argv...))
	if len(argv) == 0 {
		return nil
	}
	return f.errs[argv[0]]
}

func (f *Fake) Available(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.available[name]
}

func (f *Fake) Calls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// CommandLines returns every recorded call joined with spaces.
func (f *Fake) CommandLines() []string {
	var lines []string
	for _, c := range f.Calls() {
		lines = append(lines, strings.Join(c, " "))
	}
	return lines
}

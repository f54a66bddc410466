// Package session implements spec.md §3/§9's Session: the unit of
// compilation that owns every allocator, pool, builder, the element
// graph, and the diagnostic collector for one compilation run, and
// drives the pipeline — load, lex, parse, lower, then the semantic
// engine's eight passes — end to end.
//
// Grounded on the teacher's compiler.go/executor.go (a Compiler type
// whose Compile method resolves, parses, and links a set of named files,
// parallelizing independent per-file work via a semaphore-bounded
// executor before a single-threaded link stage touches shared symbol
// tables): this package keeps that two-phase shape — bounded-parallel
// load+lex+parse, then strictly single-threaded lowering and semantic
// passes — using golang.org/x/sync/errgroup in place of the teacher's
// golang.org/x/sync/semaphore, since errgroup's per-task error
// propagation fits "read this file" failures better than a bare
// semaphore would.
package session

import (
	"context"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/basecode-lang/basecode-sub003/ast"
	"github.com/basecode-lang/basecode-sub003/collab"
	"github.com/basecode-lang/basecode-sub003/ir"
	"github.com/basecode-lang/basecode-sub003/lexer"
	"github.com/basecode-lang/basecode-sub003/lower"
	"github.com/basecode-lang/basecode-sub003/report"
	"github.com/basecode-lang/basecode-sub003/scope"
	"github.com/basecode-lang/basecode-sub003/sema"
	"github.com/basecode-lang/basecode-sub003/source"
	"github.com/basecode-lang/basecode-sub003/token"
)

// maxLoadParallelism bounds the errgroup LoadSources uses to load and
// lex independent files concurrently. This is a scheduling knob only —
// spec.md §5 still requires the graph-mutating stages (lowering onward)
// to run on one logical thread, which Compile enforces by calling Lower
// only after every LoadSources goroutine has returned.
const maxLoadParallelism = 8

// Session owns one compilation run end to end (spec.md §3 "Session").
//
// Per spec.md §5, "no mutable global state is shared between sessions
// except the process-wide token keyword canonicals and intrinsic-name
// registry" — everything hung off a Session here (FileSet, Builder,
// Scope, Errs, and each file's own token.Pool) is private to it, so
// independent Sessions may run fully in parallel with no synchronization
// between them.
type Session struct {
	Config Config

	FileSet *source.FileSet
	Builder *ir.Builder
	Scope   *scope.Manager
	Errs    *report.Report
	Engine  *sema.Engine

	emitter collab.Emitter
	vm      collab.VM
	ffi     collab.FFI

	program ir.Elem
	files   []fileUnit
}

// fileUnit is one loaded-and-parsed source file: the product of
// LoadSources' independent-per-file phase, consumed sequentially by
// Lower.
type fileUnit struct {
	path string
	file source.FileID
	pool *token.Pool
	ast  ast.Node
}

// New creates a Session configured by cfg, with its program root and
// scope manager already in place. Collaborators default to none;
// sema.Engine treats a Session without them as a session that simply
// cannot finalize #run/#foreign (collab.NopVM/NopFFI fill the gap),
// which is a configuration choice, not an error (see sema/finalize.go).
func New(cfg Config) *Session {
	builder := ir.NewBuilder()
	program := builder.MakeProgram(source.Span{})
	return &Session{
		Config:  cfg,
		FileSet: &source.FileSet{},
		Builder: builder,
		Scope:   scope.NewManager(builder, program),
		Errs:    &report.Report{},
		program: program,
	}
}

// WithCollaborators configures the Emitter/VM/FFI collaborators spec.md
// §6 names. Any argument may be nil to leave that collaborator unset.
func (s *Session) WithCollaborators(emitter collab.Emitter, vm collab.VM, ffi collab.FFI) {
	s.emitter = emitter
	s.vm = vm
	s.ffi = ffi
}

// Program returns the program-root element every loaded file's
// top-level statements are lowered into.
func (s *Session) Program() ir.Elem { return s.program }

// LoadSources expands s.Config.Sources (spec.md §6 "a list of source
// file paths"), then loads, lexes, and parses each resulting file
// independently.
//
// Per spec.md §5 ADD, this phase may run concurrently across files
// because lexing and parsing one file only ever touches that file's own
// source.Buffer, token.Pool, and ast.Builder — no cross-file state is
// touched until Lower begins. The two pieces of state that genuinely are
// shared (s.FileSet, for stable FileIDs, and s.Errs, the session-wide
// diagnostic collector) are each guarded by the same mutex, and every
// critical section through it is O(1): FileSet.Add and appending a
// handful of diagnostics, never the parse itself.
func (s *Session) LoadSources(ctx context.Context) error {
	paths, err := s.Config.ExpandSources()
	if err != nil {
		return err
	}

	results := make([]fileUnit, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxLoadParallelism)

	var mu sync.Mutex
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			text, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("session: reading %s: %w", path, err)
			}
			buf := source.Load(path, string(text))

			mu.Lock()
			fileID := s.FileSet.Add(buf)
			mu.Unlock()

			local := &report.Report{}
			pool := token.NewPool()
			ids := lexer.New(s.FileSet, fileID, buf, pool, local).Lex()
			p := ast.NewParser(s.FileSet, fileID, pool, ids, local)
			prog := p.ParseProgram()

			mu.Lock()
			for _, d := range local.Diagnostics() {
				s.Errs.Add(d)
			}
			results[i] = fileUnit{path: path, file: fileID, pool: pool, ast: prog}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	s.files = results
	return nil
}

// Lower lowers every loaded file's AST into the shared element graph, in
// the order LoadSources resolved them (which is Config.Sources' order,
// not goroutine-completion order — spec.md §5's "elements are visited in
// program order" applies from here on). This stage is single-threaded,
// matching spec.md §5's "no operation suspends or yields within a pass".
func (s *Session) Lower() {
	lw := lower.New(s.Builder, s.Scope, s.Errs)
	for _, f := range s.files {
		lw.Program(f.ast)
	}
}

// Compile runs the full pipeline end to end: LoadSources, Lower, then
// the semantic engine's eight passes (spec.md §4.7).
//
// Compile returns a non-nil error only for a load-time failure (a
// missing file, a malformed glob pattern) that prevented the pipeline
// from running at all. Ordinary lexical, syntactic, and semantic
// problems are never returned as errors — they are recorded on s.Errs,
// per spec.md §7's "every error is recorded on the session's result
// collector"; callers should check s.Succeeded() after a nil error.
func (s *Session) Compile(ctx context.Context) error {
	if err := s.LoadSources(ctx); err != nil {
		return err
	}
	s.Lower()

	s.Engine = sema.NewEngine(s.Builder, s.Scope, s.Errs)
	s.Engine.WithCollaborators(s.vm, s.ffi)
	s.Engine.Run(s.program)

	s.Errs.Sort()
	return nil
}

// Succeeded reports whether Compile ran to completion with zero errors
// recorded (spec.md §4.7/§7: "the session is successful iff no error was
// reported" and "the pipeline completed all passes"). It is false if
// Compile has not been called yet.
func (s *Session) Succeeded() bool {
	return s.Engine != nil && s.Engine.Succeeded()
}

// Diagnostics returns every diagnostic recorded so far, sorted by source
// location once Compile has run.
func (s *Session) Diagnostics() []report.Diagnostic {
	return s.Errs.Diagnostics()
}

// Emit invokes the configured Emitter collaborator on the finalized
// program. It is a no-op returning nil if no Emitter was configured via
// WithCollaborators — code generation is an external collaborator
// concern (spec.md §1), not a mandatory session step, and a session
// built only to check a program for errors (e.g. an editor's
// diagnostics-on-save integration) has no reason to require one.
func (s *Session) Emit() error {
	if s.emitter == nil {
		return nil
	}
	return s.emitter.Emit(s.program)
}

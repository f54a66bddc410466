package session

import (
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Config is the concrete Go shape of spec.md §6's "a session is
// configured with...": source file paths/globs, build-time definitions,
// optional graph-dump output paths, the (out-of-scope) VM's heap/stack
// sizes, and a path to the compiler executable for locating the runtime
// library.
//
// Config has no required collaborator-shaped fields; a zero Config
// compiles zero files successfully (a no-op session), matching spec.md's
// instruction that the core not assume any particular CLI or file
// discovery policy.
type Config struct {
	// Sources is a list of source file paths or doublestar glob patterns
	// (e.g. "src/**/*.bc"). ExpandSources resolves these to concrete
	// paths.
	Sources []string `yaml:"sources"`

	// Definitions is the build-time key-value definition map spec.md §6
	// names ("a key-value map of build-time definitions").
	Definitions map[string]string `yaml:"definitions"`

	// ASTGraphOut, if non-empty, is a path LoadSources' caller may dump a
	// textual AST rendering to (spec.md §6: "an optional AST-graph output
	// path"). The core does not write this file itself — AST
	// visualization is explicitly out of scope (spec.md §1) — the field
	// exists so a collaborator driver (cmd/basecodec) can read it.
	ASTGraphOut string `yaml:"ast_graph_out"`

	// ElemDOMOut is the analogous output path for an element-graph dump.
	ElemDOMOut string `yaml:"elem_dom_out"`

	// HeapSize and StackSize configure the (out-of-scope) VM
	// collaborator; the core threads them through unexamined.
	HeapSize  int `yaml:"heap_size"`
	StackSize int `yaml:"stack_size"`

	// RuntimePath locates the compiler executable, for a collaborator
	// that needs to find the runtime library relative to it.
	RuntimePath string `yaml:"runtime_path"`
}

// LoadConfig parses a YAML build manifest into a Config. spec.md §6
// leaves the session-configuration format unspecified; this package
// gives it one concrete shape using the same gopkg.in/yaml.v3 library
// the teacher already depends on for golden/fixture comparison.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("session: reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("session: parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// ExpandSources resolves c.Sources (a mix of plain paths and doublestar
// glob patterns such as "src/**/*.bc") into a deduplicated list of
// concrete file paths. The list is not sorted: paths follow the order of
// c.Sources, glob matches keep the order the glob returns them in, and
// the first occurrence of a duplicate is kept.
//
// Grounded on the teacher's internal/golden and internal/corpora use of
// doublestar for recursive test-fixture discovery; here the same
// "pattern in, file list out" shape powers ordinary source discovery
// instead.
func (c Config) ExpandSources() ([]string, error) {
	seen := make(map[string]bool, len(c.Sources))
	var out []string
	for _, pattern := range c.Sources {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("session: invalid source pattern %q", pattern)
		}
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("session: expanding source pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			// A literal path with no glob metacharacters that matched
			// nothing is still a source the caller named explicitly;
			// surface it as-is so LoadSources reports a clear "file not
			// found" rather than silently compiling zero files.
			if !strings.ContainsAny(pattern, "*?[{") {
				matches = []string{pattern}
			}
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	return out, nil
}

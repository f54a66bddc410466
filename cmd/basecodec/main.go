// Command basecodec is a thin driver that exercises package session end
// to end: load a build manifest (or a bare list of source files), run
// the compilation pipeline, and print diagnostics.
//
// spec.md §1 explicitly places "the CLI front-end" out of scope for the
// specified core; SPEC_FULL.md §3/§12 keeps that framing — this command
// exists only so the session API has a runnable entry point for manual
// testing, not as a specified component. It intentionally does nothing
// beyond: parse flags, build a session.Config, call Session.Compile, and
// render diagnostics with the exit-status convention spec.md §7
// describes ("exits with status 1 on any recorded error, 0 otherwise").
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/basecode-lang/basecode-sub003/session"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("basecodec", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a YAML session manifest (see session.Config)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	var cfg session.Config
	var err error
	switch {
	case *configPath != "":
		cfg, err = session.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	case fs.NArg() > 0:
		cfg = session.Config{Sources: fs.Args()}
	default:
		fmt.Fprintln(os.Stderr, "usage: basecodec [-config manifest.yaml] [file.bc ...]")
		return 2
	}

	sess := session.New(cfg)
	if err := sess.Compile(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	for _, d := range sess.Diagnostics() {
		fmt.Fprintln(os.Stderr, d)
	}

	if !sess.Succeeded() {
		return 1
	}
	return 0
}

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/choomlang/choom/protocol"
)

func cmdScript(args []string) int {
	fs := flag.NewFlagSet("script", flag.ExitOnError)
	to := fs.String("to", "jsonl", "Output format: jsonl or dsl")
	failFast := fs.Bool("fail-fast", true, "Stop at the first invalid line")
	_ = fs.Parse(args)

	if *to != "jsonl" && *to != "dsl" {
		return fail(fmt.Errorf("to must be jsonl or dsl, got %q", *to))
	}
	if fs.NArg() < 1 {
		return fail(fmt.Errorf("script requires a path, glob pattern, or '-'"))
	}

	var texts []string
	if fs.Arg(0) == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fail(err)
		}
		texts = []string{string(data)}
	} else {
		paths, err := expandGlobs(fs.Args())
		if err != nil {
			return fail(err)
		}
		for _, path := range paths {
			data, err := os.ReadFile(path)
			if err != nil {
				return fail(err)
			}
			texts = append(texts, string(data))
		}
	}

	hadErrors := false
	for _, text := range texts {
		var outputs, errs []string
		if *to == "dsl" {
			outputs, errs = protocol.ScriptToDSL(parser, text, *failFast)
		} else {
			outputs, errs = protocol.ScriptToJSONL(parser, text, *failFast)
		}
		for _, line := range outputs {
			fmt.Println(line)
		}
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "error: %s\n", e)
			hadErrors = true
		}
	}
	if hadErrors {
		return 2
	}
	return 0
}

// expandGlobs resolves each argument as a doublestar pattern when it contains
// glob metacharacters, and as a literal path otherwise. Results are sorted
// and deduplicated.
func expandGlobs(args []string) ([]string, error) {
	seen := map[string]bool{}
	var paths []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			paths = append(paths, path)
		}
	}
	for _, arg := range args {
		if !containsGlobMeta(arg) {
			if _, err := os.Stat(arg); err != nil {
				return nil, err
			}
			add(arg)
			continue
		}
		base, pattern := doublestar.SplitPattern(filepath.ToSlash(arg))
		matches, err := doublestar.Glob(os.DirFS(base), pattern)
		if err != nil {
			return nil, fmt.Errorf("bad glob pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", arg)
		}
		for _, match := range matches {
			add(filepath.Join(base, match))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func containsGlobMeta(s string) bool {
	for _, r := range s {
		switch r {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}

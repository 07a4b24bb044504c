package main

import (
	"flag"
	"fmt"
	"os"
	"regexp"
	"strings"
)

var paramKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_.\-]+$`)

func cmdLint(args []string) int {
	fs := flag.NewFlagSet("lint", flag.ExitOnError)
	lenient := fs.Bool("lenient", false, "Allow standalone trailing punctuation tokens")
	strictOps := fs.Bool("strict-ops", false, "Warn for unknown ops")
	strictTargets := fs.Bool("strict-targets", false, "Warn for unknown targets")
	files := fs.Bool("files", false, "Treat input as file paths or glob patterns, one line linted per file line")
	_ = fs.Parse(args)

	var lines []string
	if *files {
		paths, err := expandGlobs(fs.Args())
		if err != nil {
			return fail(err)
		}
		for _, path := range paths {
			data, err := os.ReadFile(path)
			if err != nil {
				return fail(err)
			}
			for _, line := range strings.Split(string(data), "\n") {
				if strings.TrimSpace(line) != "" {
					lines = append(lines, line)
				}
			}
		}
	} else {
		text, err := readInput(fs.Arg(0))
		if err != nil {
			return fail(err)
		}
		lines = []string{text}
	}

	worst := 0
	for _, line := range lines {
		warnings, errs := lintLine(line, *lenient, *strictOps, *strictTargets)
		for _, warning := range warnings {
			fmt.Fprintf(os.Stderr, "warn: %s\n", warning)
		}
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "error: %s\n", e)
		}
		switch {
		case len(errs) > 0:
			worst = 2
		case len(warnings) > 0 && worst < 2:
			worst = 1
		}
	}
	return worst
}

// lintLine flags suspicious but parseable patterns as warnings and hard
// parse failures as errors.
func lintLine(text string, lenient, strictOps, strictTargets bool) (warnings, errs []string) {
	if !lenient {
		fields := strings.Fields(text)
		if len(fields) > 2 {
			for _, token := range fields[2:] {
				switch token {
				case ".", ",", ";", ":", "!", "?":
					warnings = append(warnings, fmt.Sprintf("suspicious standalone punctuation token: %q", token))
				}
			}
		}
	}

	cmd, err := parser.ParseWith(text, lenient)
	if err != nil {
		errs = append(errs, err.Error())
		return warnings, errs
	}

	canonical, err := parser.Format(cmd)
	if err != nil {
		errs = append(errs, err.Error())
		return warnings, errs
	}
	if canonical != strings.TrimSpace(text) {
		warnings = append(warnings, "non-canonical DSL formatting; run `choom fmt`")
	}

	if strictOps && !reg.IsKnownOp(cmd.Op) {
		warnings = append(warnings, fmt.Sprintf("unknown op '%s' in strict registry mode", cmd.Op))
	}
	if strictTargets && !reg.IsKnownTarget(cmd.Target) {
		warnings = append(warnings, fmt.Sprintf("unknown target '%s' in strict registry mode", cmd.Target))
	}
	for key := range cmd.Params {
		if !paramKeyPattern.MatchString(key) {
			warnings = append(warnings, fmt.Sprintf("param key '%s' is non-conventional; use [A-Za-z0-9_.-] without spaces", key))
		}
	}
	return warnings, errs
}

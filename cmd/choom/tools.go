package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/choomlang/choom/config"
	"github.com/choomlang/choom/profiles"
	"github.com/choomlang/choom/protocol"
	"github.com/choomlang/choom/teach"
	"github.com/choomlang/choom/translate"
)

func cmdTranslate(args []string) int {
	fs := flag.NewFlagSet("translate", flag.ExitOnError)
	reverse := fs.Bool("reverse", false, "Translate JSON -> DSL")
	compact := fs.Bool("compact", false, "Emit compact JSON")
	_ = fs.Parse(args)

	text, err := readInput(fs.Arg(0))
	if err != nil {
		return fail(err)
	}

	// JSON input translates to DSL regardless of direction flags.
	if *reverse || strings.HasPrefix(strings.TrimSpace(text), "{") {
		line, err := translate.JSONToDSL(parser, reg, text)
		if err != nil {
			return fail(err)
		}
		fmt.Println(line)
		return 0
	}

	out, err := translate.DSLToJSON(parser, text, *compact)
	if err != nil {
		return fail(err)
	}
	fmt.Println(out)
	return 0
}

func cmdTeach(args []string) int {
	fs := flag.NewFlagSet("teach", flag.ExitOnError)
	lenient := fs.Bool("lenient", false, "Allow a trivial trailing punctuation token")
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		return fail(fmt.Errorf("teach requires a DSL line"))
	}
	out, err := teach.Explain(parser, reg, fs.Arg(0), *lenient)
	if err != nil {
		return fail(err)
	}
	fmt.Println(out)
	return 0
}

func cmdValidate(args []string) int {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	lenient := fs.Bool("lenient", false, "Allow a trivial trailing punctuation token")
	_ = fs.Parse(args)

	text, err := readInput(fs.Arg(0))
	if err != nil {
		return fail(err)
	}
	cmd, err := parser.ParseWith(text, *lenient)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		printValidationHints(text, err, *lenient)
		return 2
	}
	if !reg.IsKnownOp(cmd.Op) {
		fmt.Fprintf(os.Stderr, "hint: unknown op '%s'. supported ops: %s\n",
			cmd.Op, strings.Join(reg.KnownOps(), ", "))
	}
	if !reg.IsKnownTarget(cmd.Target) {
		fmt.Fprintf(os.Stderr, "hint: unknown target '%s'. supported targets: %s\n",
			cmd.Target, strings.Join(reg.KnownTargets(), ", "))
	}
	fmt.Println("ok")
	return 0
}

// printValidationHints maps common parse failures to actionable hints.
func printValidationHints(text string, err error, lenient bool) {
	message := err.Error()
	if strings.Contains(message, "missing '='") {
		fmt.Fprintln(os.Stderr, "hint: key/value params must use key=value (example: gen txt prompt=hello)")
		if start := strings.Index(message, " in token '"); start >= 0 {
			token := message[start+len(" in token '"):]
			if end := strings.Index(token, "'"); end >= 0 {
				fmt.Fprintf(os.Stderr, "hint: did you mean %s=<value>?\n", token[:end])
			}
		}
	}
	if !lenient && endsWithPunctuation(text) {
		fmt.Fprintln(os.Stderr, "hint: trailing punctuation is common; try --lenient")
	}
}

func endsWithPunctuation(text string) bool {
	trimmed := strings.TrimSpace(text)
	return strings.HasSuffix(trimmed, ".") ||
		strings.HasSuffix(trimmed, ",") ||
		strings.HasSuffix(trimmed, ";")
}

func cmdFmt(args []string) int {
	fs := flag.NewFlagSet("fmt", flag.ExitOnError)
	lenient := fs.Bool("lenient", false, "Allow a trivial trailing punctuation token")
	_ = fs.Parse(args)

	text, err := readInput(fs.Arg(0))
	if err != nil {
		return fail(err)
	}
	line, err := parser.FormatLine(text, *lenient)
	if err != nil {
		return fail(err)
	}
	fmt.Println(line)
	return 0
}

func cmdSchema(args []string) int {
	fs := flag.NewFlagSet("schema", flag.ExitOnError)
	mode := fs.String("mode", "strict", "Schema strictness: strict or permissive")
	_ = fs.Parse(args)

	var m protocol.Mode
	switch *mode {
	case "strict":
		m = protocol.Strict
	case "permissive":
		m = protocol.Permissive
	default:
		return fail(fmt.Errorf("mode must be strict or permissive, got %q", *mode))
	}
	data, err := json.MarshalIndent(protocol.CanonicalJSONSchema(reg, m), "", "  ")
	if err != nil {
		return fail(err)
	}
	fmt.Println(string(data))
	return 0
}

func cmdGuard(args []string) int {
	fs := flag.NewFlagSet("guard", flag.ExitOnError)
	errText := fs.String("error", "", "Optional parse/validation error text")
	previous := fs.String("previous", "", "Optional previous model output")
	_ = fs.Parse(args)

	fmt.Println(protocol.BuildGuardPrompt(*errText, *previous))
	return 0
}

func cmdProfile(args []string) int {
	fs := flag.NewFlagSet("profile", flag.ExitOnError)
	dir := fs.String("dir", "", "Profiles directory (defaults to config profiles_dir)")
	lenient := fs.Bool("lenient", false, "Allow a trivial trailing punctuation token")
	_ = fs.Parse(args)

	profilesDir := *dir
	if profilesDir == "" {
		profilesDir = loadProfilesDir()
	}

	switch fs.Arg(0) {
	case "list":
		names, err := profiles.List(profilesDir)
		if err != nil {
			return fail(err)
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return 0
	case "show":
		if fs.NArg() < 2 {
			return fail(fmt.Errorf("profile show requires a name"))
		}
		profile, err := profiles.Read(profilesDir, fs.Arg(1))
		if err != nil {
			return fail(err)
		}
		data, err := json.MarshalIndent(profile, "", "  ")
		if err != nil {
			return fail(err)
		}
		fmt.Println(string(data))
		return 0
	case "apply":
		if fs.NArg() < 3 {
			return fail(fmt.Errorf("profile apply requires a name and a DSL line"))
		}
		line, err := profiles.ApplyToLine(parser, reg, profilesDir, fs.Arg(1), fs.Arg(2), *lenient)
		if err != nil {
			return fail(err)
		}
		fmt.Println(line)
		return 0
	}
	return fail(fmt.Errorf("profile requires one of: list, show, apply"))
}

func loadProfilesDir() string {
	cfg, err := config.LoadConfig()
	if err != nil || cfg.ProfilesDir == "" {
		return "profiles"
	}
	return cfg.ProfilesDir
}

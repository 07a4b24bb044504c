package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	choomdsl "github.com/choomlang/choom/dsl"
	"github.com/choomlang/choom/registry"
)

var reg = registry.Default()
var parser = choomdsl.NewParser(reg)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		usage(os.Stderr)
		return 2
	}
	command, rest := args[0], args[1:]
	switch command {
	case "translate":
		return cmdTranslate(rest)
	case "teach":
		return cmdTeach(rest)
	case "validate":
		return cmdValidate(rest)
	case "fmt":
		return cmdFmt(rest)
	case "lint":
		return cmdLint(rest)
	case "profile":
		return cmdProfile(rest)
	case "script":
		return cmdScript(rest)
	case "schema":
		return cmdSchema(rest)
	case "guard":
		return cmdGuard(rest)
	case "completion":
		return cmdCompletion(rest)
	case "relay":
		return cmdRelay(rest)
	case "demo":
		return cmdDemo(rest)
	case "help", "-h", "--help":
		usage(os.Stdout)
		return 0
	}
	fmt.Fprintf(os.Stderr, "unknown command %q\n", command)
	usage(os.Stderr)
	return 2
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `Usage: choom <command> [flags]

Commands:
  translate   Translate DSL <-> JSON
  teach       Explain a DSL line token-by-token
  validate    Validate a DSL line
  fmt         Canonicalize one DSL line
  lint        Warn on non-canonical or suspicious DSL patterns
  profile     Manage and apply parameter profiles
  script      Process multi-line scripts (files or glob patterns)
  schema      Emit the JSON Schema for canonical payload JSON
  guard       Print a reusable model repair prompt
  completion  Print a shell completion script
  relay       Run a two-model relay
  demo        Run a predefined structured relay demo`)
}

// readInput returns value unless it is empty or "-", in which case stdin is
// consumed instead.
func readInput(value string) (string, error) {
	if value != "" && value != "-" {
		return value, nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("input required via argument or stdin")
	}
	return text, nil
}

func fail(err error) int {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	return 2
}

func newLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

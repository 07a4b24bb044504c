package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/choomlang/choom/config"
	"github.com/choomlang/choom/llm"
	"github.com/choomlang/choom/relay"
	"github.com/choomlang/choom/translate"
)

func cmdRelay(args []string) int {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fail(err)
	}

	fs := flag.NewFlagSet("relay", flag.ExitOnError)
	transport := fs.String("transport", cfg.Transport, "Transport: ollama, openai, anthropic, gemini, or bedrock")
	baseURL := fs.String("base-url", cfg.BaseURL, "Transport base URL")
	aModel := fs.String("a-model", cfg.AModel, "Model name for speaker A")
	bModel := fs.String("b-model", cfg.BModel, "Model name for speaker B")
	turns := fs.Int("turns", cfg.MaxTurns, "Number of A/B turn pairs")
	seed := fs.Int64("seed", 0, "Deterministic sampling seed (transports that support it)")
	systemA := fs.String("system-a", "", "Optional system prompt for speaker A")
	systemB := fs.String("system-b", "", "Optional system prompt for speaker B")
	start := fs.String("start", "", "Optional initial ChoomLang line")
	strict := fs.Bool("strict", true, "Require valid ChoomLang from each model with one retry")
	structured := fs.Bool("structured", false, "Use structured output mode")
	useSchema := fs.Bool("schema", true, "Use the canonical JSON schema with --structured")
	allowUnknownOp := fs.Bool("allow-unknown-op", false, "Allow unknown op values in structured validation")
	allowUnknownTarget := fs.Bool("allow-unknown-target", false, "Allow unknown target values in structured validation")
	rawJSON := fs.Bool("raw-json", false, "Print raw replies in relay output")
	logPath := fs.String("log", cfg.Log, "Append transcript records to this JSONL file")
	lenient := fs.Bool("lenient", false, "Allow a trivial trailing punctuation token in DSL mode")
	timeout := fs.Float64("timeout", cfg.TimeoutS, "HTTP timeout in seconds")
	keepAlive := fs.Float64("keep-alive", cfg.KeepAliveS, "Model keep-alive in seconds")
	noFallback := fs.Bool("no-fallback", false, "Disable the structured schema/json fallback chain")
	noRepeat := fs.Bool("no-repeat", false, "Nudge a model once when it repeats the incoming line verbatim")
	probe := fs.Bool("probe", false, "Probe transport connectivity and model readiness, then exit")
	warm := fs.Bool("warm", false, "Pre-warm both models before the turn exchange")
	debug := fs.Bool("debug", false, "Verbose attempt logging")
	_ = fs.Parse(args)

	if *aModel == "" || *bModel == "" {
		return fail(fmt.Errorf("relay requires --a-model and --b-model"))
	}
	var seedPtr *int64
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			seedPtr = seed
		}
	})

	ctx := context.Background()
	client, err := llm.NewClient(ctx, *transport, *baseURL, time.Duration(*timeout*float64(time.Second)))
	if err != nil {
		return fail(err)
	}

	if *probe {
		return runProbe(ctx, client, []string{*aModel, *bModel})
	}

	logger := newLogger(*debug)
	transcript, err := relay.OpenTranscriptLog(*logPath)
	if err != nil {
		return fail(err)
	}
	defer transcript.Close()

	engine := relay.NewEngine(client, reg, transcript, logger, relay.Options{
		AModel:             *aModel,
		BModel:             *bModel,
		Turns:              *turns,
		Seed:               seedPtr,
		SystemA:            *systemA,
		SystemB:            *systemB,
		Start:              *start,
		Strict:             *strict,
		Structured:         *structured,
		UseSchema:          *structured && *useSchema,
		AllowUnknownOp:     *allowUnknownOp,
		AllowUnknownTarget: *allowUnknownTarget,
		FallbackEnabled:    !*noFallback,
		Lenient:            *lenient,
		NoRepeat:           *noRepeat,
		TimeoutS:           *timeout,
		KeepAliveS:         *keepAlive,
		Warm:               *warm,
	})

	exchanges, runErr := engine.Run(ctx)
	for _, exchange := range exchanges {
		fmt.Printf("%s: %s\n", exchange.Side, exchange.DSL)
		if payload, err := translate.EncodePayload(exchange.Payload, true); err == nil {
			fmt.Println(payload)
		}
		if *rawJSON && exchange.Raw != "" {
			fmt.Printf("raw: %s\n", exchange.Raw)
		}
	}
	printSummary(engine.Summary())
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", runErr)
		fmt.Fprintln(os.Stderr, "hint: relay failed early. Try: choom relay --probe --a-model X --b-model Y")
		return 2
	}
	return 0
}

func printSummary(summary relay.Summary) {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return
	}
	fmt.Println("summary:")
	fmt.Println(string(data))
}

func runProbe(ctx context.Context, client llm.Client, models []string) int {
	report, err := relay.Probe(ctx, client, models)
	if err != nil {
		return fail(err)
	}
	fmt.Println("probe report:")
	for _, entry := range report.Entries {
		status := "fail"
		if entry.OK {
			status = "ok"
		}
		if entry.Kind == "model" {
			fmt.Printf("- model %s: %s http=%d elapsed_ms=%d\n", entry.Model, status, entry.HTTPStatus, entry.ElapsedMS)
		} else {
			fmt.Printf("- %s: %s http=%d elapsed_ms=%d\n", entry.Kind, status, entry.HTTPStatus, entry.ElapsedMS)
		}
		if entry.Reason != "" {
			fmt.Printf("  reason: %s\n", entry.Reason)
		}
		if len(entry.Suggestions) > 0 {
			fmt.Printf("  did you mean: %v\n", entry.Suggestions)
		}
	}
	if !report.OK {
		return 2
	}
	return 0
}

func cmdDemo(args []string) int {
	fs := flag.NewFlagSet("demo", flag.ExitOnError)
	timeout := fs.Float64("timeout", 180, "HTTP timeout in seconds")
	keepAlive := fs.Float64("keep-alive", 300, "Model keep-alive in seconds")
	_ = fs.Parse(args)

	fmt.Println("=== ChoomLang Relay Demo ===")
	fmt.Println("Models: llama3.2:latest <-> qwen2.5:latest")
	fmt.Println("Saving transcript to choom_demo.jsonl")
	return cmdRelay([]string{
		"--a-model", "llama3.2:latest",
		"--b-model", "qwen2.5:latest",
		"--turns", "4",
		"--structured",
		"--start", `gen txt prompt="ChoomLang in action: describe a client-server protocol in 5 lines"`,
		"--log", "choom_demo.jsonl",
		"--timeout", fmt.Sprintf("%g", *timeout),
		"--keep-alive", fmt.Sprintf("%g", *keepAlive),
	})
}

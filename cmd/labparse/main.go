// Command labparse parses one recognized lab report from a file or stdin
// and prints the structured result as JSON or CSV.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"labparse/internal/app"
	"labparse/internal/config"
	"labparse/internal/csvexport"
	"labparse/internal/domain"
	"labparse/internal/service"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "labparse: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	file        string
	useAI       bool
	format      string
	timeout     time.Duration
	catalogPath string
	quiet       bool
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}
	fs := pflag.NewFlagSet("labparse", pflag.ContinueOnError)
	fs.StringVarP(&opts.file, "file", "f", "", "Report text file (reads stdin when empty or \"-\")")
	fs.BoolVar(&opts.useAI, "ai", false, "Consult the configured AI provider and merge its result")
	fs.StringVar(&opts.format, "format", "json", "Output format: json or csv")
	fs.DurationVar(&opts.timeout, "timeout", 30*time.Second, "Upper bound for the AI call")
	fs.StringVar(&opts.catalogPath, "catalog", "", "XLSX catalog replacing the built-in indicators")
	fs.BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress log output")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: labparse [options] [--file report.txt]\n\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nAI providers are configured through the same environment as the server,\n")
		fmt.Fprintf(os.Stderr, "e.g. OPENAI_API_KEY, ANTHROPIC_API_KEY, GEMINI_API_KEY or USE_LOCAL_LLM.\n")
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.format != "json" && opts.format != "csv" {
		return nil, fmt.Errorf("unsupported format %q", opts.format)
	}
	if opts.file == "" && fs.NArg() > 0 {
		opts.file = fs.Arg(0)
	}
	return opts, nil
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}
	if opts.quiet {
		log.SetOutput(io.Discard)
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if opts.catalogPath != "" {
		cfg.Catalog.XLSXPath = opts.catalogPath
	}

	text, err := readInput(opts.file, stdin)
	if err != nil {
		return err
	}

	orch, err := app.NewPipeline(cfg)
	if err != nil {
		return err
	}
	svc := service.NewReportService(orch, service.Options{AITimeout: opts.timeout, BatchConcurrency: 1})

	result, err := svc.Parse(context.Background(), service.ParseInput{UseAI: opts.useAI, OCRResult: domain.OCRResult{Text: text}})
	if err != nil {
		return err
	}
	for _, w := range result.Warnings {
		log.Printf("warning: %s", w)
	}

	if opts.format == "csv" {
		return writeCSV(stdout, result)
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(result)
}

func readInput(path string, stdin io.Reader) (string, error) {
	if path == "" || path == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(b), nil
}

func writeCSV(out io.Writer, result *service.ParseResult) error {
	w := csvexport.NewWriter(out)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.WriteReport(result.ID, result.Report); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

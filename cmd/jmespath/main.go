// Command jmespath is an end-user CLI around this module's compiler and
// VM: compile an expression, evaluate it against a JSON or YAML document,
// and print the result. Grounded in shape on cmd/inspect-slice/main.go's
// single-purpose main() and cmd/test_production/main.go's
// load-document/transform/inspect pipeline, generalized from their
// hardcoded inputs to flags and stdin.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	jmespath "github.com/nozzle/jmespath"
	"github.com/nozzle/jmespath/internal/jplog"
	"github.com/nozzle/jmespath/registry"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type config struct {
	yamlIn      bool
	yamlOut     bool
	compact     bool
	rawOutput   bool
	explain     bool
	strictTypes bool
	maxArgs     int
	validate    string
	logLevel    string
	color       string
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("jmespath", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var cfg config
	fs.BoolVar(&cfg.yamlIn, "yaml", false, "read input as YAML instead of JSON")
	fs.BoolVar(&cfg.yamlOut, "yaml-output", false, "print the result as YAML instead of JSON")
	fs.BoolVar(&cfg.compact, "c", false, "compact JSON output (no indentation)")
	fs.BoolVar(&cfg.rawOutput, "r", false, "print a string result without surrounding quotes")
	fs.BoolVar(&cfg.explain, "explain", false, "treat input as a list of documents and print one result per row")
	fs.BoolVar(&cfg.strictTypes, "strict-types", false, "raise on every function argument type mismatch, ignoring each function's declared null-on-mismatch policy")
	fs.IntVar(&cfg.maxArgs, "max-args", registry.DefaultOptions().MaxArgs, "reject function calls with more than this many arguments")
	fs.StringVar(&cfg.validate, "validate", "", "validate the input document against this JSON Schema file before evaluating")
	fs.StringVar(&cfg.logLevel, "log-level", "warn", "diagnostic log verbosity: error, warn, info, or debug")
	fs.StringVar(&cfg.color, "color", "auto", "colorize diagnostics: auto, always, or never")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: jmespath [flags] <expression> [file]\n\nflags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	rest := fs.Args()
	if len(rest) < 1 {
		fs.Usage()
		return 2
	}
	expression := rest[0]

	log := jplog.New(jplog.ParseLevel(cfg.logLevel), stderr)
	useColor := shouldColor(cfg.color, stdout)

	program, err := jmespath.Compile(expression)
	if err != nil {
		fmt.Fprintln(stderr, renderError(err, useColor))
		return 1
	}

	var src io.Reader = stdin
	if len(rest) > 1 {
		f, err := os.Open(rest[1])
		if err != nil {
			fmt.Fprintln(stderr, renderError(err, useColor))
			return 1
		}
		defer f.Close()
		src = f
	}
	raw, err := io.ReadAll(src)
	if err != nil {
		fmt.Fprintln(stderr, renderError(err, useColor))
		return 1
	}

	if cfg.explain {
		return runExplain(program, raw, cfg, log, stdout, stderr, useColor)
	}

	input, err := decodeOne(raw, cfg.yamlIn)
	if err != nil {
		fmt.Fprintln(stderr, renderError(err, useColor))
		return 1
	}

	if cfg.validate != "" {
		if err := validateAgainst(cfg.validate, input); err != nil {
			log.Errorf("schema validation failed: %s", err)
			fmt.Fprintln(stderr, renderError(err, useColor))
			return 1
		}
		log.Infof("input validated against %s", cfg.validate)
	}

	opts := registry.Options{MaxArgs: cfg.maxArgs, StrictTypes: cfg.strictTypes, LogLevel: cfg.logLevel}
	result, err := jmespath.EvaluateWithOptions(program, input, registry.NewDefault(), opts)
	if err != nil {
		log.Errorf("evaluation failed: %s", err)
		fmt.Fprintln(stderr, renderError(err, useColor))
		return 1
	}

	out, err := encodeResult(result, cfg)
	if err != nil {
		fmt.Fprintln(stderr, renderError(err, useColor))
		return 1
	}
	fmt.Fprintln(stdout, out)
	return 0
}

func decodeOne(raw []byte, asYAML bool) (any, error) {
	var v any
	if asYAML {
		if err := yaml.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decoding YAML input: %w", err)
		}
		return normalizeYAML(v), nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decoding JSON input: %w", err)
	}
	return v, nil
}

// normalizeYAML recursively converts yaml.v3's map[string]interface{}
// decoding (already the default for string-keyed mappings) into the
// map[string]any / []any / float64 shapes the VM's opField/opIndex type
// switches expect, matching encoding/json's decoding conventions exactly
// so the same expression behaves identically under -yaml and plain JSON.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeYAML(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeYAML(val)
		}
		return out
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	default:
		return v
	}
}

func validateAgainst(schemaPath string, doc any) error {
	f, err := os.Open(schemaPath)
	if err != nil {
		return fmt.Errorf("opening schema %s: %w", schemaPath, err)
	}
	defer f.Close()

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaPath, f); err != nil {
		return fmt.Errorf("loading schema %s: %w", schemaPath, err)
	}
	schema, err := compiler.Compile(schemaPath)
	if err != nil {
		return fmt.Errorf("compiling schema %s: %w", schemaPath, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("input does not match %s: %w", schemaPath, err)
	}
	return nil
}

func encodeResult(result any, cfg config) (string, error) {
	if cfg.rawOutput {
		if s, ok := result.(string); ok {
			return s, nil
		}
	}
	if cfg.yamlOut {
		out, err := yaml.Marshal(result)
		if err != nil {
			return "", fmt.Errorf("encoding YAML output: %w", err)
		}
		return string(out), nil
	}
	if cfg.compact {
		out, err := json.Marshal(result)
		if err != nil {
			return "", fmt.Errorf("encoding JSON output: %w", err)
		}
		return string(out), nil
	}
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding JSON output: %w", err)
	}
	return string(out), nil
}

func shouldColor(mode string, stdout io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := stdout.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

func renderError(err error, color bool) string {
	if !color {
		return err.Error()
	}
	const red, reset = "\x1b[31m", "\x1b[0m"
	return red + err.Error() + reset
}

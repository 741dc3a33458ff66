package main

import (
	"bufio"
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/mcncl/jsonshape/internal/config"
	"github.com/mcncl/jsonshape/internal/engine"
	"github.com/mcncl/jsonshape/internal/errors"
	"github.com/mcncl/jsonshape/internal/formatter"
	"github.com/mcncl/jsonshape/internal/generator"
	"github.com/mcncl/jsonshape/internal/logging"
	"github.com/mcncl/jsonshape/internal/models"
	"github.com/mcncl/jsonshape/internal/parser"
	"github.com/mcncl/jsonshape/internal/validator"
	"gopkg.in/yaml.v3"
)

// Version information
const (
	Version = "0.1.0"
)

// Globals are flags shared by every command
type Globals struct {
	Config string `help:"Path to config file. Defaults to .jsonshape.yml searched from the working directory upwards." short:"c" type:"path"`
	Debug  bool   `help:"Enable debug logging." short:"d"`
}

// Context holds the runtime context
type Context struct {
	Globals
	// Interactive lets a terminal user paste JSON when no input is given.
	Interactive bool
	Stdin       io.Reader
	Stdout      io.Writer
	Stderr      io.Writer
}

// GenerateCmd infers a schema from a sample
type GenerateCmd struct {
	Input                string `help:"Path to input JSON file. If not specified, reads from stdin." short:"i" type:"path"`
	Output               string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	Format               string `help:"Output format: json-schema, schema-source or interface-source." short:"F"`
	RootName             string `help:"Name for the root interface." short:"r"`
	Required             bool   `help:"Mark properties that were present and non-null as required."`
	AdditionalProperties bool   `help:"Allow properties not seen in the sample."`
	Examples             bool   `help:"Include sampled strings as JSON Schema examples."`
	Interactive          bool   `help:"Run in interactive mode, allowing direct JSON input with Ctrl+D to process." short:"I"`
}

// ValidateCmd checks data against a schema
type ValidateCmd struct {
	Input   string `help:"Path to the JSON data file. If not specified, reads from stdin." short:"i" type:"path"`
	Schema  string `help:"Path to the schema: JSON or YAML for the structural backend, schema-source text for parse-based. Without it an inferred schema is printed." short:"s" type:"path"`
	Backend string `help:"Validation backend: structural or parse-based." short:"b"`
	Output  string `help:"Path to output file for the result. If not specified, writes to stdout." short:"o" type:"path"`
}

// VersionCmd prints the version
type VersionCmd struct{}

// CLI defines the command-line interface
var CLI struct {
	Globals

	Generate GenerateCmd `cmd:"" default:"withargs" help:"Infer a schema from a JSON sample."`
	Validate ValidateCmd `cmd:"" help:"Validate JSON data against a schema."`
	Version  VersionCmd  `cmd:"" help:"Show version information."`
}

func main() {
	app := kong.Must(&CLI,
		kong.Name("jsonshape"),
		kong.Description("Infer schemas from JSON samples and validate JSON against them"),
		kong.UsageOnError(),
	)

	kctx, err := app.Parse(os.Args[1:])
	app.FatalIfErrorf(err)

	ctx := &Context{
		Globals: CLI.Globals,
		// With no arguments at all, fall back to pasting JSON like a REPL.
		Interactive: len(os.Args) == 1,
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
	}

	if err := kctx.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))

		var appErr *errors.AppError
		if !stderrors.As(err, &appErr) || appErr.Type != errors.ErrorTypeValidation {
			fmt.Fprintf(os.Stderr, "\nFor help, run: jsonshape --help\n")
		}
		os.Exit(1)
	}
}

// Run executes the generate command
func (g *GenerateCmd) Run(ctx *Context) error {
	cfg, eng, err := ctx.setup(config.CLIOverrides{
		RootName:             g.RootName,
		Format:               g.Format,
		Required:             flagOverride(g.Required),
		AdditionalProperties: flagOverride(g.AdditionalProperties),
		IncludeExamples:      flagOverride(g.Examples),
	})
	if err != nil {
		return err
	}

	data, err := ctx.readInput(g.Input, ctx.Interactive || g.Interactive)
	if err != nil {
		return err
	}

	out, err := eng.GenerateSchema(data, generator.Format(cfg.Format))
	if err != nil {
		return err
	}

	text, err := formatter.NewFormatter().FormatOutput(out)
	if err != nil {
		return err
	}
	return ctx.writeOutput(g.Output, text)
}

// Run executes the validate command. An invalid result is written out and
// then reported as a validation error so the process exits non-zero.
func (v *ValidateCmd) Run(ctx *Context) error {
	cfg, eng, err := ctx.setup(config.CLIOverrides{Backend: v.Backend})
	if err != nil {
		return err
	}
	backend := validator.Backend(cfg.Backend)

	data, err := ctx.readInput(v.Input, ctx.Interactive)
	if err != nil {
		return err
	}

	var schema models.Value
	if v.Schema != "" {
		schema, err = loadSchema(v.Schema, backend)
		if err != nil {
			return err
		}
	}

	result := eng.ValidateData(data, schema, backend)
	text, err := formatter.NewFormatter().FormatResult(result)
	if err != nil {
		return err
	}
	if err := ctx.writeOutput(v.Output, text); err != nil {
		return err
	}

	if !result.Valid {
		return errors.NewValidationError(fmt.Sprintf("%d error(s) found", len(result.Errors)), nil)
	}
	return nil
}

// Run prints the version
func (VersionCmd) Run(ctx *Context) error {
	_, err := fmt.Fprintf(ctx.Stdout, "jsonshape version %s\n", Version)
	return err
}

// setup loads configuration with CLI precedence and builds the engine
func (c *Context) setup(overrides config.CLIOverrides) (*config.Config, *engine.Engine, error) {
	overrides.Debug = c.Debug

	configPath := c.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	cfg, err := config.LoadConfigWithCLI(configPath, overrides)
	if err != nil {
		return nil, nil, errors.NewConfigError("failed to load configuration", err)
	}

	logger, err := logging.New(cfg.Log, c.Stderr)
	if err != nil {
		return nil, nil, errors.NewConfigError("invalid log settings", err)
	}
	if configPath != "" {
		logger.WithField("path", configPath).Debug("loaded config file")
	}

	return cfg, engine.NewFromConfig(cfg, logger), nil
}

// readInput reads JSON from file or stdin
func (c *Context) readInput(path string, interactive bool) (models.Value, error) {
	if path != "" {
		return parser.ParseFile(path)
	}

	if f, ok := c.Stdin.(*os.File); ok {
		stdinInfo, err := f.Stat()
		if err != nil {
			return nil, errors.NewInputError("failed to access stdin", err)
		}
		// Terminal is interactive (not piped)
		if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
			if interactive {
				return c.readInteractiveInput()
			}
			return nil, errors.NewInputError("no input provided", errors.ErrNoInput)
		}
	}

	jsonData, err := io.ReadAll(c.Stdin)
	if err != nil {
		return nil, errors.NewInputError("failed to read from stdin", err)
	}
	if len(bytes.TrimSpace(jsonData)) == 0 {
		return nil, errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}

	return parser.Parse(bytes.NewReader(jsonData))
}

// readInteractiveInput lets users paste JSON and signal completion with
// Ctrl+D (EOF)
func (c *Context) readInteractiveInput() (models.Value, error) {
	fmt.Fprintln(c.Stderr, "jsonshape interactive mode")
	fmt.Fprintln(c.Stderr, "Paste your JSON below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	reader := bufio.NewReader(c.Stdin)
	var jsonBuilder strings.Builder

	for {
		line, err := reader.ReadString('\n')
		jsonBuilder.WriteString(line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewInputError("error reading input", err)
		}
	}

	jsonData := jsonBuilder.String()
	if strings.TrimSpace(jsonData) == "" {
		return nil, errors.NewInputError("empty input received", errors.ErrEmptyInput)
	}

	fmt.Fprintln(c.Stderr, "\nProcessing JSON...")
	return parser.ParseString(jsonData)
}

// writeOutput writes text to file or stdout
func (c *Context) writeOutput(path, text string) error {
	if path != "" {
		if err := os.WriteFile(path, []byte(text), 0644); err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", path), err)
		}
		fmt.Fprintf(c.Stderr, "Output written to %s\n", path)
		return nil
	}

	if _, err := io.WriteString(c.Stdout, text); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}

// loadSchema reads a schema file for the chosen backend. Parse-based schemas
// are source text; structural schemas are JSON, or YAML by extension.
func loadSchema(path string, backend validator.Backend) (models.Value, error) {
	data, err := parser.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if backend == validator.BackendParse {
		return models.String(data), nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, errors.NewDecodeError(fmt.Sprintf("failed to parse YAML schema '%s'", path), err)
		}
		return models.FromInterface(doc), nil
	default:
		return parser.Parse(bytes.NewReader(data))
	}
}

// flagOverride turns a boolean flag into a config override. Flags can only
// switch a setting on.
func flagOverride(set bool) *bool {
	if !set {
		return nil
	}
	return &set
}

// Package engine is the entry point for schema generation and validation.
package engine

import (
	"github.com/mcncl/jsonshape/internal/analyzer"
	"github.com/mcncl/jsonshape/internal/config"
	"github.com/mcncl/jsonshape/internal/generator"
	"github.com/mcncl/jsonshape/internal/logging"
	"github.com/mcncl/jsonshape/internal/models"
	"github.com/mcncl/jsonshape/internal/validator"
	"github.com/sirupsen/logrus"
)

// Engine ties inference, emission and validation together. Its fields are
// read-only after New, so one Engine may serve concurrent callers.
type Engine struct {
	analyzer  *analyzer.Analyzer
	validator *validator.Validator
	options   generator.Options
	log       logrus.FieldLogger
}

// New creates an Engine. A nil logger discards output.
func New(opts generator.Options, log logrus.FieldLogger) *Engine {
	log = logging.OrDiscard(log)
	return &Engine{
		analyzer:  analyzer.NewAnalyzerWithOptions(analyzer.Options{AdditionalProperties: opts.AdditionalProperties}),
		validator: validator.New(log),
		options:   opts,
		log:       log,
	}
}

// NewFromConfig creates an Engine whose emitter options come from cfg.
func NewFromConfig(cfg *config.Config, log logrus.FieldLogger) *Engine {
	return New(OptionsFromConfig(cfg), log)
}

// OptionsFromConfig maps configuration onto emitter options.
func OptionsFromConfig(cfg *config.Config) generator.Options {
	return generator.Options{
		Required:             cfg.Schema.Required,
		AdditionalProperties: cfg.Schema.AdditionalProperties,
		IncludeExamples:      cfg.Schema.IncludeExamples,
		RootName:             cfg.RootName,
		TypeName:             cfg.GetTypeName,
	}
}

// Infer returns the type model of data.
func (e *Engine) Infer(data models.Value) models.Type {
	typ := e.analyzer.Infer(data)
	e.log.WithField("type", typ.TypeKind()).Debug("inferred type")
	return typ
}

// GenerateSchema infers a type from data and renders it in format. An
// unknown format falls back to JSON Schema.
func (e *Engine) GenerateSchema(data models.Value, format generator.Format) (generator.Output, error) {
	emitter, err := generator.NewEmitter(format)
	if err != nil {
		e.log.WithField("format", format).Warn("unsupported format, falling back to json-schema")
		emitter = generator.JSONSchemaEmitter{}
	}

	out, err := emitter.Emit(e.Infer(data), e.options)
	if err != nil {
		return generator.Output{}, err
	}
	e.log.WithField("format", out.Format).Debug("schema emitted")
	return out, nil
}

// ValidateData checks data against schema. With no schema it returns a
// valid result carrying the JSON Schema inferred from data instead.
func (e *Engine) ValidateData(data, schema models.Value, backend validator.Backend) validator.Result {
	if schema == nil {
		return e.bootstrap(data)
	}
	return e.validator.Validate(data, schema, backend)
}

func (e *Engine) bootstrap(data models.Value) validator.Result {
	out, err := generator.JSONSchemaEmitter{}.Emit(e.Infer(data), e.options)
	if err != nil {
		return validator.Result{
			Valid:   false,
			Errors:  []validator.ErrorDetail{{Path: "", Keyword: "generate", Message: err.Error()}},
			Message: "Could not infer a schema from the data",
		}
	}
	e.log.Debug("no schema given, returning inferred schema")
	return validator.Result{
		Valid:           true,
		Message:         "No schema provided; generated one from the data",
		GeneratedSchema: out.Document,
	}
}

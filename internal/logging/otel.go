package logging

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newDualCore creates a core writing to stdout and/or the OTEL log bridge.
func newDualCore(cfg *Config, otelProvider log.LoggerProvider) (zapcore.Core, error) {
	cores := make([]zapcore.Core, 0, 2)

	if cfg.Output.Stdout {
		encoder, err := NewRedactingEncoder(newEncoder(cfg.Format), cfg.Redaction)
		if err != nil {
			return nil, fmt.Errorf("failed to create redacting encoder: %w", err)
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), cfg.Level))
	}

	if cfg.Output.OTEL && otelProvider != nil {
		name := cfg.Fields["service"]
		if name == "" {
			name = "pestid"
		}
		redactor, err := newFieldRedactor(cfg.Redaction)
		if err != nil {
			return nil, err
		}
		bridge := otelzap.NewCore(name, otelzap.WithLoggerProvider(otelProvider))
		cores = append(cores, &redactingCore{Core: bridge, redactor: redactor})
	}

	if len(cores) == 0 {
		return nil, fmt.Errorf("at least one output must be enabled and available")
	}

	core := cores[0]
	if len(cores) > 1 {
		core = zapcore.NewTee(cores...)
	}

	return newSampledCore(core, cfg.Sampling), nil
}

// fieldRedactor applies the redaction rules to fields before they leave the
// process through the OTEL bridge, which has no encoder to wrap.
type fieldRedactor struct {
	keys     map[string]bool
	patterns []*regexp.Regexp
}

func newFieldRedactor(cfg RedactionConfig) (*fieldRedactor, error) {
	r := &fieldRedactor{keys: make(map[string]bool, len(cfg.Fields))}
	if !cfg.Enabled {
		return r, nil
	}
	for _, f := range cfg.Fields {
		r.keys[strings.ToLower(f)] = true
	}
	for _, p := range cfg.Patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redaction pattern %q: %w", p, err)
		}
		r.patterns = append(r.patterns, re)
	}
	return r, nil
}

func (r *fieldRedactor) apply(fields []zapcore.Field) []zapcore.Field {
	out := make([]zapcore.Field, len(fields))
	for i, f := range fields {
		out[i] = r.field(f)
	}
	return out
}

func (r *fieldRedactor) field(f zapcore.Field) zapcore.Field {
	if r.keys[strings.ToLower(f.Key)] {
		return zap.String(f.Key, "[REDACTED]")
	}
	if f.Type == zapcore.StringType {
		for _, re := range r.patterns {
			if re.MatchString(f.String) {
				return zap.String(f.Key, "[REDACTED:pattern]")
			}
		}
	}
	return f
}

type redactingCore struct {
	zapcore.Core
	redactor *fieldRedactor
}

func (c *redactingCore) With(fields []zapcore.Field) zapcore.Core {
	return &redactingCore{Core: c.Core.With(c.redactor.apply(fields)), redactor: c.redactor}
}

func (c *redactingCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *redactingCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	return c.Core.Write(ent, c.redactor.apply(fields))
}

package config

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var configSchemaCUE []byte

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString("config validation failed:\n")
	for _, err := range e {
		sb.WriteString(fmt.Sprintf("  %s: %s\n", err.Field, err.Message))
	}
	return sb.String()
}

// Validator validates configuration against the embedded CUE schema.
type Validator struct {
	ctx    *cue.Context
	schema cue.Value
}

// NewValidator creates a new configuration validator.
func NewValidator() (*Validator, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(configSchemaCUE, cue.Filename("schema.cue"))
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling schema: %w", schema.Err())
	}

	def := schema.LookupPath(cue.ParsePath("#Config"))
	if !def.Exists() {
		return nil, fmt.Errorf("schema does not define #Config")
	}

	return &Validator{
		ctx:    ctx,
		schema: def,
	}, nil
}

// ValidateDocument checks raw YAML against the CUE schema. Unknown fields
// are rejected because #Config is closed.
func (v *Validator) ValidateDocument(data []byte) error {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return ValidationErrors{{Field: "(document)", Message: err.Error()}}
	}
	if doc == nil {
		doc = map[string]any{}
	}

	value := v.ctx.Encode(doc)
	if value.Err() != nil {
		return fmt.Errorf("encoding config document: %w", value.Err())
	}

	unified := v.schema.Unify(value)
	err := unified.Validate(cue.Concrete(true))
	if err == nil {
		return nil
	}

	var errs ValidationErrors
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		errs = append(errs, ValidationError{
			Field:   fieldPath(e.Path()),
			Message: fmt.Sprintf(format, args...),
		})
	}
	if len(errs) == 0 {
		errs = append(errs, ValidationError{Field: "(document)", Message: err.Error()})
	}
	return errs
}

func fieldPath(path []string) string {
	if len(path) > 0 && path[0] == "#Config" {
		path = path[1:]
	}
	if len(path) == 0 {
		return "(root)"
	}
	return strings.Join(path, ".")
}

// Validate checks cross-field rules the schema cannot express and the fields
// every platform call needs.
func (v *Validator) Validate(cfg *Config) error {
	var errs ValidationErrors

	required := []struct {
		field string
		value string
	}{
		{"rootUrl", cfg.RootURL},
		{"tokenUrl", cfg.TokenURL},
		{"clientId", cfg.ClientID},
		{"subKey", cfg.SubKey},
		{"org", cfg.Org},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, ValidationError{Field: r.field, Message: "is required"})
		}
	}

	for _, u := range []struct {
		field string
		value string
	}{
		{"rootUrl", cfg.RootURL},
		{"tokenUrl", cfg.TokenURL},
	} {
		if u.value == "" {
			continue
		}
		parsed, err := url.Parse(u.value)
		if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			errs = append(errs, ValidationError{Field: u.field, Message: "must be an absolute http(s) URL"})
		}
	}

	if cfg.ClientSecret == "" && cfg.ClientSecretRef == nil {
		errs = append(errs, ValidationError{
			Field:   "clientSecret",
			Message: "either clientSecret or clientSecretRef must be set",
		})
	}
	if ref := cfg.ClientSecretRef; ref != nil && (ref.Namespace == "" || ref.Name == "" || ref.Key == "") {
		errs = append(errs, ValidationError{
			Field:   "clientSecretRef",
			Message: "namespace, name and key are all required",
		})
	}

	if cfg.RateLimit.RequestsPerSecond < 0 {
		errs = append(errs, ValidationError{Field: "rateLimit.requestsPerSecond", Message: "must not be negative"})
	}
	if cfg.Timeout < 0 {
		errs = append(errs, ValidationError{Field: "timeout", Message: "must not be negative"})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ValidateFile validates a configuration file at the given path: first the
// document against the schema, then the loaded values.
func (v *Validator) ValidateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := v.ValidateDocument(data); err != nil {
		return err
	}

	cfg, err := NewLoader().Load(path)
	if err != nil {
		return fmt.Errorf("loading config file: %w", err)
	}

	return v.Validate(cfg)
}

package schema

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/aretw0/summarize/pkg/domain"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	decodeKeyPattern = regexp.MustCompile(`^'([^']*)'\s*(.*)$`)
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		// Report JSON field names instead of Go field names.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// DecodeTrialConfig converts an experiment runner parameter map into a validated TrialConfig.
// Unknown keys are ignored.
func DecodeTrialConfig(params map[string]any) (domain.TrialConfig, error) {
	var cfg domain.TrialConfig
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return cfg, err
	}
	if err := dec.Decode(params); err != nil {
		return cfg, decodeErrors(err)
	}
	if err := ValidateTrialConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ParseTrialConfig decodes a YAML or JSON document.
func ParseTrialConfig(data []byte) (domain.TrialConfig, error) {
	var params map[string]any
	if err := yaml.Unmarshal(data, &params); err != nil {
		return domain.TrialConfig{}, fmt.Errorf("parse trial config: %w", err)
	}
	if params == nil {
		return domain.TrialConfig{}, &AggregateError{Errors: []error{
			&ValidationError{Key: "questions", Reason: "required"},
		}}
	}
	return DecodeTrialConfig(params)
}

// LoadTrialConfig reads and decodes a YAML or JSON file.
func LoadTrialConfig(path string) (domain.TrialConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.TrialConfig{}, fmt.Errorf("read trial config: %w", err)
	}
	cfg, err := ParseTrialConfig(data)
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ValidateTrialConfig checks the struct constraints of cfg.
func ValidateTrialConfig(cfg domain.TrialConfig) error {
	err := structValidator().Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	errs := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, &ValidationError{
			Key:    fieldPath(fe.Namespace()),
			Reason: reason(fe),
			Value:  reportedValue(fe),
		})
	}
	return &AggregateError{Errors: errs}
}

func decodeErrors(err error) error {
	var mErr *mapstructure.Error
	if !errors.As(err, &mErr) {
		return &AggregateError{Errors: []error{&ValidationError{Key: "", Reason: err.Error()}}}
	}

	errs := make([]error, 0, len(mErr.Errors))
	for _, msg := range mErr.Errors {
		ve := &ValidationError{Reason: msg}
		if m := decodeKeyPattern.FindStringSubmatch(msg); m != nil {
			ve.Key, ve.Reason = m[1], m[2]
		}
		errs = append(errs, ve)
	}
	return &AggregateError{Errors: errs}
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

func reportedValue(fe validator.FieldError) any {
	v := fe.Value()
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.IsZero() {
		return nil
	}
	return v
}

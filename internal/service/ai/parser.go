package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/kapu/sdg-pulse/internal/domain"
	apperrors "github.com/kapu/sdg-pulse/pkg/errors"
)

var controlChars = regexp.MustCompile(`[\x00-\x1F\x7F]`)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared schema validator with the sdg and emotion tags registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("sdg", func(fl validator.FieldLevel) bool {
			return domain.SDG(fl.Field().String()).IsValid()
		})
		_ = v.RegisterValidation("emotion", func(fl validator.FieldLevel) bool {
			return domain.Emotion(fl.Field().String()).IsValid()
		})
		validate = v
	})
	return validate
}

// ParseStructured turns raw model output into a validated T. Exactly one of the
// results is non-nil; failures are *errors.ParseError.
//
// Only the span from the first '{' to the last '}' is decoded. That recovers an
// object with prose on either side but is a best-effort heuristic: text with
// several objects or stray braces is mangled.
func ParseStructured[T any](raw string) (*T, error) {
	cleaned := controlChars.ReplaceAllString(StripCodeFence(raw), "")

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return nil, apperrors.NewParseError(apperrors.ParseStageExtract, "no JSON structure found", raw, nil)
	}
	cleaned = cleaned[start : end+1]

	var out T
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return nil, apperrors.NewParseError(apperrors.ParseStageDecode, "invalid JSON", raw, err)
	}

	if err := ValidateStruct(&out); err != nil {
		return nil, apperrors.NewParseError(apperrors.ParseStageValidate, "schema validation failed", raw, err)
	}

	return &out, nil
}

// ValidateStruct validates v against its validate tags. Non-struct values pass.
// A rejection is a *errors.ValidationError naming the first failing field.
func ValidateStruct(v any) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	first := fieldErrs[0]
	verr := apperrors.NewValidationError(
		fmt.Sprintf("%s failed %q", first.Namespace(), first.Tag()),
		first.Field(),
		first.Value(),
	)
	verr.Cause = err
	return verr
}

// StripCodeFence trims whitespace and an enclosing ``` fence with optional language tag.
func StripCodeFence(text string) string {
	cleaned := strings.TrimSpace(text)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}

	cleaned = strings.TrimPrefix(cleaned, "```")
	if newline := strings.IndexByte(cleaned, '\n'); newline >= 0 {
		tag := strings.TrimSpace(cleaned[:newline])
		if tag == "" || isFenceTag(tag) {
			cleaned = cleaned[newline+1:]
		}
	} else if lower := strings.ToLower(cleaned); strings.HasPrefix(lower, "json") {
		cleaned = cleaned[len("json"):]
	}

	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

func isFenceTag(tag string) bool {
	for _, r := range tag {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_') {
			return false
		}
	}
	return true
}

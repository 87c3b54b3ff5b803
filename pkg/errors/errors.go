package errors

import "fmt"

// Error codes
const (
	CodePipelineError = "PIPELINE_ERROR"
	CodeAPIError      = "API_ERROR"
	CodeValidation    = "VALIDATION_ERROR"
	CodeParse         = "PARSE_ERROR"
	CodeConfig        = "CONFIG_ERROR"
	CodeCache         = "CACHE_ERROR"
	CodeService       = "SERVICE_ERROR"
)

type PipelineError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

func NewPipelineError(message, code string, statusCode int, context map[string]any) *PipelineError {
	return &PipelineError{
		Message:    message,
		Code:       code,
		StatusCode: statusCode,
		Context:    context,
	}
}

func (e *PipelineError) WithCause(cause error) *PipelineError {
	e.Cause = cause
	return e
}

// APIError is a failed exchange with the completion service. StatusCode is 0
// when no HTTP response was received.
type APIError struct {
	*PipelineError
	Model string
}

func NewAPIError(message, model string, statusCode int, cause error) *APIError {
	return &APIError{
		PipelineError: &PipelineError{
			Message:    message,
			Code:       CodeAPIError,
			StatusCode: statusCode,
			Context: map[string]any{
				"model": model,
			},
			Cause: cause,
		},
		Model: model,
	}
}

// IsRateLimited reports whether the remote side answered 429.
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == 429
}

// IsServerSide reports whether the failure is the service's fault rather than the request's.
func (e *APIError) IsServerSide() bool {
	return e.StatusCode == 0 || e.StatusCode == 429 || e.StatusCode >= 500
}

type ValidationError struct {
	*PipelineError
	Field string
	Value interface{}
}

func NewValidationError(message, field string, value interface{}) *ValidationError {
	return &ValidationError{
		PipelineError: &PipelineError{
			Message:    message,
			Code:       CodeValidation,
			StatusCode: 400,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}

// ParseStage names the step of structured-output parsing that rejected a reply.
type ParseStage string

const (
	ParseStageExtract  ParseStage = "extract"
	ParseStageDecode   ParseStage = "decode"
	ParseStageValidate ParseStage = "validate"
)

type ParseError struct {
	*PipelineError
	Stage ParseStage
	Raw   string
}

func NewParseError(stage ParseStage, detail string, raw string, cause error) *ParseError {
	return &ParseError{
		PipelineError: &PipelineError{
			Message:    detail,
			Code:       CodeParse,
			StatusCode: 422,
			Context: map[string]any{
				"stage": string(stage),
			},
			Cause: cause,
		},
		Stage: stage,
		Raw:   raw,
	}
}

// ConfigError is fatal: the process must not continue past it.
type ConfigError struct {
	*PipelineError
	Key string
}

func NewConfigError(message, key string) *ConfigError {
	return &ConfigError{
		PipelineError: &PipelineError{
			Message:    message,
			Code:       CodeConfig,
			StatusCode: 500,
			Context: map[string]any{
				"key": key,
			},
		},
		Key: key,
	}
}

type CacheError struct {
	*PipelineError
	Operation string
	Key       string
}

func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		PipelineError: &PipelineError{
			Message:    message,
			Code:       CodeCache,
			StatusCode: 500,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}

type ServiceError struct {
	*PipelineError
	Service   string
	Operation string
}

func NewServiceError(message, service, operation string, cause error) *ServiceError {
	return &ServiceError{
		PipelineError: &PipelineError{
			Message:    message,
			Code:       CodeService,
			StatusCode: 500,
			Context: map[string]any{
				"service":   service,
				"operation": operation,
			},
			Cause: cause,
		},
		Service:   service,
		Operation: operation,
	}
}

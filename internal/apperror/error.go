package apperror

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// AppError is a coded error carrying an optional cause and the stack where it
// was created.
type AppError struct {
	Code      Code
	Message   string
	Context   string
	Timestamp time.Time
	cause     error
	stack     []uintptr
}

func (e *AppError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Context != "" {
		msg += " (" + e.Context + ")"
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// Is matches another *AppError with the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Kind classifies the error by code.
func (e *AppError) Kind() Kind {
	return kindOf(e.Code)
}

// Stack returns the creation stack, one "file:line function" per line,
// runtime frames omitted.
func (e *AppError) Stack() string {
	var sb strings.Builder
	frames := runtime.CallersFrames(e.stack)
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			fmt.Fprintf(&sb, "%s:%d %s\n", frame.File, frame.Line, frame.Function)
		}
		if !more {
			break
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func captureStack() []uintptr {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	return pcs[:n]
}

// New creates an AppError. The message comes from the code's default text.
func New(code Code, opts ...Option) *AppError {
	err := &AppError{
		Code:      code,
		Message:   messages[code],
		Timestamp: time.Now(),
		stack:     captureStack(),
	}
	for _, opt := range opts {
		opt(err)
	}
	if err.Message == "" {
		err.Message = string(code)
	}
	return err
}

// Option configures New.
type Option func(*AppError)

// WithContext adds detail shown after the message, such as an address.
func WithContext(context string) Option {
	return func(e *AppError) {
		e.Context = context
	}
}

// WithCause wraps an underlying error.
func WithCause(cause error) Option {
	return func(e *AppError) {
		e.cause = cause
	}
}

// Wrap returns the AppError inside err, filling in context when it has none,
// or wraps err under code.
func Wrap(err error, code Code, context string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		if context != "" && appErr.Context == "" {
			appErr.Context = context
		}
		return appErr
	}
	return New(code, WithContext(context), WithCause(err))
}

// IsAppError reports whether err wraps an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetCode extracts the error code from an error
func GetCode(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknownError
}

// UserMessage returns a short, display-friendly description of err.
func UserMessage(err error) string {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return err.Error()
	}
	if appErr.Context != "" {
		return appErr.Message + ": " + appErr.Context
	}
	return appErr.Message
}

// LogFields returns key/value pairs describing err for the structured logger.
func LogFields(err error) []any {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return []any{"code", CodeUnknownError, "error", err.Error()}
	}

	fields := []any{"code", appErr.Code, "kind", appErr.Kind().String(), "error", appErr.Message}
	if appErr.Context != "" {
		fields = append(fields, "context", appErr.Context)
	}
	if appErr.cause != nil {
		fields = append(fields, "cause", appErr.cause.Error())
	}
	if appErr.Kind() == KindInternal && len(appErr.stack) > 0 {
		fields = append(fields, "stack", appErr.Stack())
	}
	return fields
}

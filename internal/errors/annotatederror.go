// Package errors provides error wrapping with slog annotations and caller
// information so that failures can be logged with full context at the edge
// of the application.
package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
)

// annotatedError wraps an error with a message, slog attributes, and the
// source location of the Wrap call.
type annotatedError struct {
	msg    string
	err    error
	attrs  []slog.Attr
	source string
}

func (e *annotatedError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

func (e *annotatedError) Unwrap() error {
	return e.err
}

// Wrap annotates err with a message and optional slog attributes. The caller
// location is recorded for logging with SlogError.
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	return &annotatedError{
		msg:    msg,
		err:    err,
		attrs:  attrs,
		source: callerSource(2), //nolint:mnd // skip Wrap and runtime.Caller.
	}
}

// NewSentinel creates a sentinel error suitable for errors.Is comparisons.
func NewSentinel(msg string) error {
	return errors.New(msg)
}

// New is a re-export of [errors.New].
func New(msg string) error {
	return errors.New(msg)
}

// Is is a re-export of [errors.Is].
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is a re-export of [errors.As].
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Unwrap is a re-export of [errors.Unwrap].
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// Join is a re-export of [errors.Join].
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// DecoratePanic converts a recovered panic value into an annotated error
// pointing at the panic site.
func DecoratePanic(recovered any) error {
	return &annotatedError{
		msg:    fmt.Sprintf("panic: %v", recovered),
		err:    nil,
		attrs:  nil,
		source: panicSource(),
	}
}

// SlogError renders an error chain as a single slog group attribute with the
// message, collected annotations, and the innermost recorded source location.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.Group("error", slog.String("message", "<nil>"))
	}

	var (
		attrs  []slog.Attr
		source string
	)
	for unwrapped := err; unwrapped != nil; unwrapped = errors.Unwrap(unwrapped) {
		var annotated *annotatedError
		if errors.As(unwrapped, &annotated) {
			attrs = append(attrs, annotated.attrs...)
			source = annotated.source
			unwrapped = annotated
		}
	}

	groupAttrs := []slog.Attr{slog.String("message", err.Error())}
	if source != "" {
		groupAttrs = append(groupAttrs, slog.String("source", source))
	}
	if len(attrs) > 0 {
		groupAttrs = append(groupAttrs, slog.Attr{
			Key:   "annotations",
			Value: slog.GroupValue(attrs...),
		})
	}
	return slog.Group("error", listToAny(groupAttrs)...)
}

func listToAny(attrs []slog.Attr) []any {
	anys := make([]any, len(attrs))
	for i, attr := range attrs {
		anys[i] = attr
	}
	return anys
}

// callerSource returns "file.go:line" for the given call depth.
func callerSource(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	if idx := strings.LastIndexByte(file, '/'); idx >= 0 {
		file = file[idx+1:]
	}
	return fmt.Sprintf("%s:%d", file, line)
}

// panicSource walks the stack for the frame that triggered the panic, i.e.
// the first frame after runtime.gopanic.
func panicSource() string {
	const maxDepth = 32
	pcs := make([]uintptr, maxDepth)
	n := runtime.Callers(1, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	sawPanic := false
	for {
		frame, more := frames.Next()
		if strings.HasPrefix(frame.Function, "runtime.gopanic") {
			sawPanic = true
		} else if sawPanic && !strings.HasPrefix(frame.Function, "runtime.") {
			file := frame.File
			if idx := strings.LastIndexByte(file, '/'); idx >= 0 {
				file = file[idx+1:]
			}
			return fmt.Sprintf("%s:%d", file, frame.Line)
		}
		if !more {
			break
		}
	}
	return callerSource(3) //nolint:mnd // fall back to the DecoratePanic caller.
}

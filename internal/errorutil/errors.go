// Package errorutil holds the error values shared by the module packages.
package errorutil

//go:generate go tool errtrace -w .

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ghettovoice/urlbuilder/internal/util"
)

// Error is a constant error value.
type Error string

func (s Error) Error() string { return string(s) }

// Errorf formats a plain [Error].
func Errorf(format string, args ...any) error {
	return Error(fmt.Sprintf(format, args...)) //errtrace:skip
}

// NewWrapperError returns sentinel annotated by args:
// an error is wrapped, a string is the message, a string with args is a format.
// Without args or with an unsupported first arg the sentinel itself is returned.
func NewWrapperError(sentinel error, args ...any) error {
	if len(args) == 0 {
		return sentinel //errtrace:skip
	}
	switch v := args[0].(type) {
	case error:
		if errors.Is(v, sentinel) {
			return v //errtrace:skip
		}
		return fmt.Errorf("%w: %w", sentinel, v) //errtrace:skip
	case string:
		if len(args) > 1 {
			v = fmt.Sprintf(v, args[1:]...)
		}
		return fmt.Errorf("%w: %s", sentinel, v) //errtrace:skip
	default:
		return sentinel //errtrace:skip
	}
}

// ErrInvalidArgument is returned for unusable constructor and option values.
const ErrInvalidArgument Error = "invalid argument"

// NewInvalidArgumentError is [NewWrapperError] with [ErrInvalidArgument].
func NewInvalidArgumentError(args ...any) error {
	return NewWrapperError(ErrInvalidArgument, args...) //errtrace:skip
}

// JoinPrefix joins non-nil errs under the prefix, one error per line.
// A single error is returned as "prefix: err", no errors give nil.
func JoinPrefix(prefix string, errs ...error) error {
	var list []error
	for _, err := range errs {
		if err != nil {
			list = append(list, err)
		}
	}
	switch len(list) {
	case 0:
		return nil
	case 1:
		return fmt.Errorf("%s: %w", strings.TrimRight(prefix, ":"), list[0]) //errtrace:skip
	}
	return &listError{prefix: prefix, errs: list} //errtrace:skip
}

type listError struct {
	prefix string
	errs   []error
}

func (e *listError) Error() string {
	sb := util.GetStringBuilder()
	defer util.FreeStringBuilder(sb)

	sb.WriteString(e.prefix)
	for _, err := range e.errs {
		sb.WriteString("\n  - ")
		sb.WriteString(strings.ReplaceAll(err.Error(), "\n", "\n    "))
	}
	return sb.String()
}

func (e *listError) Unwrap() []error { return e.errs }

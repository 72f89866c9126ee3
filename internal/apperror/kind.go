package apperror

import (
	"errors"
	"strings"
)

// Kind groups codes by how the caller should react.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalid
	KindNotFound
	KindConflict
	KindPrecondition // fix the wallet or network setup, then retry
	KindUnavailable
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindPrecondition:
		return "precondition"
	case KindUnavailable:
		return "unavailable"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

func kindOf(code Code) Kind {
	s := string(code)
	switch {
	case code == CodeAlreadyWhitelisted, code == CodeInvalidState:
		return KindConflict
	case strings.Contains(s, "NOT_CONFIGURED"),
		strings.Contains(s, "NOT_CONNECTED"),
		code == CodeWrongNetwork:
		return KindPrecondition
	case strings.Contains(s, "NOT_FOUND"):
		return KindNotFound
	case strings.Contains(s, "INVALID"), code == CodeWalletUnlockFailed:
		return KindInvalid
	case strings.Contains(s, "CONNECTION"),
		strings.Contains(s, "TIMEOUT"),
		strings.Contains(s, "CIRCUIT"),
		code == CodeServiceUnavailable:
		return KindUnavailable
	case code == CodeRateLimitExceeded:
		return KindRateLimited
	default:
		return KindInternal
	}
}

// ExitCode maps err to a process exit status: 0 for nil, 1 for internal
// failures, and a distinct status per kind otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return 1
	}
	switch appErr.Kind() {
	case KindInvalid:
		return 2
	case KindPrecondition:
		return 3
	case KindNotFound:
		return 4
	case KindConflict:
		return 5
	case KindUnavailable, KindRateLimited:
		return 6
	default:
		return 1
	}
}

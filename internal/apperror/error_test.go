package apperror

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestKindAndExitCode(t *testing.T) {
	tests := []struct {
		code Code
		kind Kind
		exit int
	}{
		{CodeAlreadyWhitelisted, KindConflict, 5},
		{CodeInvalidState, KindConflict, 5},
		{CodeWrongNetwork, KindPrecondition, 3},
		{CodeWalletNotConnected, KindPrecondition, 3},
		{CodeWalletNotConfigured, KindPrecondition, 3},
		{CodeContractNoCode, KindNotFound, 4},
		{CodeInvalidPrivateKey, KindInvalid, 2},
		{CodeWalletUnlockFailed, KindInvalid, 2},
		{CodeServiceTimeout, KindUnavailable, 6},
		{CodeEthereumConnectionFailed, KindUnavailable, 6},
		{CodeCircuitOpen, KindUnavailable, 6},
		{CodeRateLimitExceeded, KindRateLimited, 6},
		{CodeTransactionReverted, KindInternal, 1},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := fmt.Errorf("cmd: %w", New(tt.code))
			if got := New(tt.code).Kind(); got != tt.kind {
				t.Errorf("kind = %s, want %s", got, tt.kind)
			}
			if got := ExitCode(err); got != tt.exit {
				t.Errorf("exit = %d, want %d", got, tt.exit)
			}
		})
	}

	if ExitCode(nil) != 0 || ExitCode(errors.New("plain")) != 1 {
		t.Error("unexpected exit code for nil or plain errors")
	}
}

func TestNew_MessageAndError(t *testing.T) {
	cause := errors.New("execution reverted")
	err := New(CodeTransactionReverted, WithContext("0xabc"), WithCause(cause))

	if err.Message != "Transaction reverted" {
		t.Errorf("unexpected message %q", err.Message)
	}
	want := "TRANSACTION_REVERTED: Transaction reverted (0xabc): execution reverted"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable through Unwrap")
	}

	// Unknown codes fall back to the code itself.
	if got := New(Code("SOMETHING_ELSE")).Message; got != "SOMETHING_ELSE" {
		t.Errorf("fallback message = %q", got)
	}
}

func TestIs_ComparesCodes(t *testing.T) {
	err := fmt.Errorf("join: %w", New(CodeWalletNotConnected, WithContext("read-only")))

	if !errors.Is(err, New(CodeWalletNotConnected)) {
		t.Error("expected match on same code")
	}
	if errors.Is(err, New(CodeWrongNetwork)) {
		t.Error("unexpected match on different code")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, CodeInternalError, "x") != nil {
		t.Fatal("Wrap(nil) should be nil")
	}

	existing := New(CodeContractCallFailed)
	wrapped := Wrap(fmt.Errorf("outer: %w", existing), CodeInternalError, "whitelistedAddress")
	if wrapped != existing {
		t.Fatal("expected the existing AppError to be returned")
	}
	if wrapped.Context != "whitelistedAddress" {
		t.Errorf("context = %q", wrapped.Context)
	}

	plain := errors.New("boom")
	wrapped = Wrap(plain, CodeEthereumRPCError, "eth_call")
	if wrapped.Code != CodeEthereumRPCError || wrapped.Context != "eth_call" {
		t.Errorf("unexpected wrap result: %+v", wrapped)
	}
	if !errors.Is(wrapped, plain) {
		t.Error("expected plain error as cause")
	}
}

func TestGetCode(t *testing.T) {
	joined := errors.Join(context.Canceled, New(CodeContractCallFailed))
	if got := GetCode(joined); got != CodeContractCallFailed {
		t.Errorf("GetCode(joined) = %s", got)
	}
	if got := GetCode(errors.New("plain")); got != CodeUnknownError {
		t.Errorf("GetCode(plain) = %s", got)
	}
	if !IsAppError(joined) || IsAppError(context.Canceled) {
		t.Error("IsAppError mismatch")
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(CodeAlreadyWhitelisted)); got != "Address is already whitelisted" {
		t.Errorf("got %q", got)
	}
	if got := UserMessage(New(CodeWrongNetwork, WithContext("chain 1"))); got != "Connected to the wrong network: chain 1" {
		t.Errorf("got %q", got)
	}
	if got := UserMessage(errors.New("plain")); got != "plain" {
		t.Errorf("got %q", got)
	}
}

func fieldMap(t *testing.T, kv []any) map[string]any {
	t.Helper()
	if len(kv)%2 != 0 {
		t.Fatalf("odd number of fields: %v", kv)
	}
	m := make(map[string]any, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		m[kv[i].(string)] = kv[i+1]
	}
	return m
}

func TestLogFields(t *testing.T) {
	fields := fieldMap(t, LogFields(New(CodeServiceTimeout,
		WithContext("waiting for 0xabc"),
		WithCause(context.DeadlineExceeded))))

	if fields["code"] != CodeServiceTimeout || fields["kind"] != "unavailable" {
		t.Errorf("unexpected fields %v", fields)
	}
	if fields["context"] != "waiting for 0xabc" || fields["cause"] != context.DeadlineExceeded.Error() {
		t.Errorf("unexpected fields %v", fields)
	}
	if _, ok := fields["stack"]; ok {
		t.Error("stack is only logged for internal errors")
	}

	internal := fieldMap(t, LogFields(New(CodeTransactionReverted)))
	stack, _ := internal["stack"].(string)
	if !strings.Contains(stack, "TestLogFields") {
		t.Errorf("stack should include the test frame:\n%s", stack)
	}

	plain := fieldMap(t, LogFields(errors.New("boom")))
	if plain["code"] != CodeUnknownError || plain["error"] != "boom" {
		t.Errorf("unexpected fields %v", plain)
	}
}

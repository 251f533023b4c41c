package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestGatewayErrorUnwraps(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := error(&GatewayError{Err: cause})
	if !errors.Is(err, cause) {
		t.Fatal("expected cause in chain")
	}
	var gw *GatewayError
	if !errors.As(err, &gw) {
		t.Fatal("expected GatewayError in chain")
	}
}

func TestToolExecutionErrorCarriesExhaustion(t *testing.T) {
	err := error(&ToolExecutionError{
		Tool: "save_memory",
		Err:  fmt.Errorf("insert: %w", ErrResourceExhausted),
	})
	if !errors.Is(err, ErrResourceExhausted) {
		t.Fatal("expected exhaustion sentinel in chain")
	}
}

func TestErrorMessagesNameTheTool(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&UnknownToolError{Name: "ghost"}, "ghost"},
		{&InvalidArgumentsError{Tool: "echo", Reason: "text is required"}, "echo"},
		{&ToolExecutionError{Tool: "flaky", Err: fmt.Errorf("boom")}, "flaky"},
	}
	for _, tc := range cases {
		if got := tc.err.Error(); !strings.Contains(got, tc.want) {
			t.Errorf("%T message %q does not name %q", tc.err, got, tc.want)
		}
	}
}

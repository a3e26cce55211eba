package transport

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"
)

func TestClassifyStatusCode(t *testing.T) {
	tests := []struct {
		status    int
		wantNil   bool
		code      ErrorCode
		retryable bool
	}{
		{200, true, 0, false},
		{302, true, 0, false},
		{400, false, ErrCodeValidation, false},
		{401, false, ErrCodeAuth, false},
		{403, false, ErrCodeAuth, false},
		{404, false, ErrCodeNotFound, false},
		{407, false, ErrCodeAuth, false},
		{422, false, ErrCodeValidation, false},
		{429, false, ErrCodeRateLimit, true},
		{500, false, ErrCodeServer, true},
		{503, false, ErrCodeServer, true},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprintf("HTTP_%d", tc.status), func(t *testing.T) {
			err := ClassifyStatusCode(tc.status)
			if tc.wantNil {
				if err != nil {
					t.Fatalf("expected nil, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, err.Code)
			}
			if err.Retryable != tc.retryable {
				t.Errorf("expected retryable=%v, got %v", tc.retryable, err.Retryable)
			}
			if err.StatusCode != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, err.StatusCode)
			}
		})
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestFromNetError(t *testing.T) {
	if FromNetError(context.Background(), nil) != nil {
		t.Error("expected nil for nil error")
	}

	if !IsTimeout(FromNetError(context.Background(), timeoutErr{})) {
		t.Error("expected net timeout to classify as timeout")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()
	if !IsTimeout(FromNetError(ctx, fmt.Errorf("use of closed network connection"))) {
		t.Error("expected done context to classify as timeout")
	}

	err := FromNetError(context.Background(), fmt.Errorf("connection refused"))
	if !IsConnection(err) || !IsRetryable(err) {
		t.Errorf("expected retryable connection error, got %v", err)
	}

	orig := ClassifyStatusCode(407)
	if got := FromNetError(context.Background(), fmt.Errorf("wrap: %w", orig)); got != orig {
		t.Error("expected existing *Error to be returned as is")
	}
}

func TestError_Message(t *testing.T) {
	if got := ClassifyStatusCode(404).Error(); got != "transport: not_found (HTTP 404): HTTP 404" {
		t.Errorf("unexpected message %q", got)
	}
	if got := NewConnectionError(fmt.Errorf("refused")).Error(); got != "transport: connection: refused" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestErrorHelpers(t *testing.T) {
	if !IsAuth(ClassifyStatusCode(401)) {
		t.Error("IsAuth")
	}
	if !IsNotFound(ClassifyStatusCode(404)) {
		t.Error("IsNotFound")
	}
	if !IsServerError(ClassifyStatusCode(502)) {
		t.Error("IsServerError")
	}
	if IsRetryable(fmt.Errorf("plain")) {
		t.Error("plain errors are not retryable")
	}
	if NewProtocolError(fmt.Errorf("bad status line")).Code.String() != "protocol" {
		t.Error("expected protocol code")
	}
}

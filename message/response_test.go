package message

import (
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestFromHTTP(t *testing.T) {
	resp := &http.Response{
		Status:     "201 Created",
		StatusCode: 201,
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header: http.Header{
			"X-B":          {"2"},
			"Content-Type": {"application/json"},
			"X-A":          {"1", "3"},
		},
		Body: io.NopCloser(strings.NewReader(`{"ok":true}`)),
	}

	out, err := FromHTTP(resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.StatusLine() != "HTTP/1.1 201 Created" {
		t.Errorf("unexpected status line %q", out.StatusLine())
	}
	if string(out.Content) != `{"ok":true}` {
		t.Errorf("unexpected content %q", out.Content)
	}
	want := []string{"Content-Type: application/json", "X-A: 1", "X-A: 3", "X-B: 2"}
	got := out.Headers()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, got[i], want[i])
		}
	}
	if out.Header("x-a") != "1" {
		t.Errorf("expected first X-A value, got %q", out.Header("x-a"))
	}
}

func TestFromHTTP_ReasonFallback(t *testing.T) {
	out, err := FromHTTP(&http.Response{StatusCode: 404, ProtoMajor: 1, ProtoMinor: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ReasonPhrase != "Not Found" {
		t.Errorf("expected Not Found, got %q", out.ReasonPhrase)
	}
	if out.ProtocolVersion != "1.0" {
		t.Errorf("expected 1.0, got %q", out.ProtocolVersion)
	}
}

func TestResponse_StatusClasses(t *testing.T) {
	tests := []struct {
		code                            int
		success, redirect, client, serv bool
	}{
		{200, true, false, false, false},
		{302, false, true, false, false},
		{404, false, false, true, false},
		{503, false, false, false, true},
	}
	for _, tc := range tests {
		r := &Response{StatusCode: tc.code}
		if r.IsSuccessful() != tc.success || r.IsRedirect() != tc.redirect ||
			r.IsClientError() != tc.client || r.IsServerError() != tc.serv {
			t.Errorf("%d: unexpected classification", tc.code)
		}
	}
}

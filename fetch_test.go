package main

import (
	"errors"
	"strings"
	"testing"
)

func TestEncodeForm(t *testing.T) {
	tests := []struct {
		name     string
		fields   []FormField
		expected string
	}{
		{
			name:     "empty",
			fields:   nil,
			expected: "",
		},
		{
			name: "login payload",
			fields: []FormField{
				{Key: "userid", Value: "tennis-fan"},
				{Key: "passwd", Value: "hunter2"},
			},
			expected: "userid=tennis-fan&passwd=hunter2",
		},
		{
			name: "input order preserved, not sorted",
			fields: []FormField{
				{Key: "zz", Value: "1"},
				{Key: "aa", Value: "2"},
			},
			expected: "zz=1&aa=2",
		},
		{
			name: "repeated keys keep every value in order",
			fields: []FormField{
				{Key: "isvkrr[]", Value: "a"},
				{Key: "isvkrr[]", Value: "b"},
			},
			expected: "isvkrr%5B%5D=a&isvkrr%5B%5D=b",
		},
		{
			name: "reservation payload with array-style key",
			fields: []FormField{
				{Key: "cvalue", Value: "5"},
				{Key: "cdate", Value: "2025-10-22"},
				{Key: "isvkrr[]", Value: "2025-10-22|5|22|8|4000"},
				{Key: "van_code", Value: ""},
			},
			expected: "cvalue=5&cdate=2025-10-22&isvkrr%5B%5D=2025-10-22%7C5%7C22%7C8%7C4000&van_code=",
		},
		{
			name: "spaces and unicode escaped",
			fields: []FormField{
				{Key: "good_name", Value: "성사야외 3번 예약"},
			},
			expected: "good_name=%EC%84%B1%EC%82%AC%EC%95%BC%EC%99%B8+3%EB%B2%88+%EC%98%88%EC%95%BD",
		},
	}

	for _, test := range tests {
		result := encodeForm(test.fields)
		if result != test.expected {
			t.Errorf("%s: encodeForm = %q, expected %q", test.name, result, test.expected)
		}
	}
}

func TestEnsureSuccess(t *testing.T) {
	if err := ensureSuccess("Login request", RequestResult{Status: 200, Body: "ok"}); err != nil {
		t.Errorf("status 200 should pass, got %v", err)
	}
	if err := ensureSuccess("Login request", RequestResult{Status: 302}); err != nil {
		t.Errorf("status 302 should pass, got %v", err)
	}

	err := ensureSuccess("Reservation request", RequestResult{Status: 500, Body: "boom"})
	if err == nil {
		t.Fatal("status 500 should fail")
	}
	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected HTTPStatusError, got %T", err)
	}
	if statusErr.Step != "Reservation request" || statusErr.Status != 500 {
		t.Errorf("unexpected HTTPStatusError: %+v", statusErr)
	}
	if !strings.Contains(err.Error(), "Reservation request") {
		t.Errorf("error should name the stage: %v", err)
	}

	if err := ensureSuccess("Login request", RequestResult{Status: 400}); err == nil {
		t.Error("status 400 should fail")
	}

	err = ensureSuccess("Login request", RequestResult{})
	if err == nil {
		t.Fatal("missing status should fail")
	}
	if !strings.Contains(err.Error(), "no HTTP status") {
		t.Errorf("missing status should say so: %v", err)
	}

	err = ensureSuccess("Login request", RequestResult{Err: "The user aborted a request."})
	if err == nil {
		t.Fatal("error result should fail")
	}
	if !strings.Contains(err.Error(), "The user aborted a request.") {
		t.Errorf("error result should carry the browser message: %v", err)
	}
}

func TestRequestResultVariants(t *testing.T) {
	ok := RequestResult{Status: 200, Body: "<html></html>"}
	if ok.Failed() {
		t.Error("result with status should not report failure")
	}

	timedOut := RequestResult{Err: "The operation was aborted."}
	if !timedOut.Failed() {
		t.Error("result with error should report failure")
	}
	if timedOut.Status != 0 {
		t.Error("error variant must not carry a status")
	}
}

func TestTruncateForLog(t *testing.T) {
	if got := truncateForLog("short", 2000); got != "short" {
		t.Errorf("short strings pass through, got %q", got)
	}
	long := strings.Repeat("x", 3000)
	if got := truncateForLog(long, 2000); len(got) != 2000 {
		t.Errorf("expected 2000 chars, got %d", len(got))
	}
}

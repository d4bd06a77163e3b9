package main

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
)

// FormField is one key/value pair of a URL-encoded body. Pairs keep their
// input order on the wire; a repeated key appears once per value.
type FormField struct {
	Key   string
	Value string
}

// HeaderField is one request header. Order is preserved in the audit log.
type HeaderField struct {
	Name  string
	Value string
}

// RequestSpec describes exactly one credentialed POST issued from inside
// the page currently loaded in the session. Immutable once built.
type RequestSpec struct {
	Method  string
	URL     string
	Headers []HeaderField
	Body    []FormField
	Timeout time.Duration
}

// RequestResult is a two-variant outcome: either Status/Body arrived, or
// Err carries the browser-side failure (abort, network error, timeout).
// Never both.
type RequestResult struct {
	Status int
	Body   string
	Err    string
}

func (r RequestResult) Failed() bool {
	return r.Err != ""
}

// ensureSuccess fails the run when a stage's request carried no status or
// an error status. Ordinary HTTP errors are the caller's call, not the
// executor's.
func ensureSuccess(step string, result RequestResult) error {
	if result.Failed() {
		return fmt.Errorf("%s failed: %s", step, result.Err)
	}
	if result.Status == 0 || result.Status >= 400 {
		return &HTTPStatusError{Step: step, Status: result.Status}
	}
	return nil
}

// encodeForm serializes pairs as application/x-www-form-urlencoded in
// input order. url.Values.Encode is not used because it sorts keys.
func encodeForm(fields []FormField) string {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(f.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(f.Value))
	}
	return b.String()
}

// browserFetchJS performs the POST from the page's own context so session
// cookies and CORS rules apply. The AbortController timer enforces the
// timeout inside the browser, bounding the hang even if the caller's wait
// is delayed.
const browserFetchJS = `async (url, headerMap, bodyString, timeoutMs) => {
	const controller = new AbortController();
	const timer = setTimeout(() => controller.abort(), timeoutMs);
	const headers = new Headers();
	Object.entries(headerMap || {}).forEach(([key, value]) => headers.append(key, value));
	try {
		const response = await fetch(url, {
			method: "POST",
			credentials: "include",
			headers,
			body: bodyString,
			signal: controller.signal,
		});
		const text = await response.text();
		clearTimeout(timer);
		return { status: response.status, text };
	} catch (error) {
		clearTimeout(timer);
		return { error: error instanceof Error ? error.message : String(error) };
	}
}`

// Executor issues single in-session requests and mirrors each one into the
// curl log. It never raises for an HTTP error status.
type Executor struct {
	session *Session
	audit   *CurlLog
	logger  *slog.Logger
}

func NewExecutor(session *Session, audit *CurlLog, logger *slog.Logger) *Executor {
	return &Executor{
		session: session,
		audit:   audit,
		logger:  logger,
	}
}

// Do performs spec inside the current window. A Go error means the session
// itself failed; fetch-level failures (including the browser-side timeout)
// come back in RequestResult.Err.
func (e *Executor) Do(spec RequestSpec) (RequestResult, error) {
	body := encodeForm(spec.Body)
	headerMap := make(map[string]string, len(spec.Headers))
	for _, h := range spec.Headers {
		headerMap[h.Name] = h.Value
	}

	e.audit.Append(buildCurlCommand(spec.Method, spec.URL, spec.Headers, body))
	e.logger.Debug("browser_fetch request",
		"url", spec.URL,
		"method", spec.Method,
		"body", body,
		"headers", headerMap,
		"timeout", spec.Timeout.Seconds(),
	)

	timeoutMs := int(spec.Timeout / time.Millisecond)
	if timeoutMs < 1000 {
		timeoutMs = 1000
	}

	// The eval deadline sits above the in-page timer so the browser-side
	// abort fires first under normal conditions.
	evalBudget := spec.Timeout + 10*time.Second
	obj, err := e.session.Eval(evalBudget, browserFetchJS, spec.URL, headerMap, body, timeoutMs)
	if err != nil {
		return RequestResult{}, err
	}

	var result RequestResult
	fields := obj.Value.Map()
	if errVal, ok := fields["error"]; ok && errVal.Str() != "" {
		result.Err = errVal.Str()
	} else {
		if status, ok := fields["status"]; ok {
			result.Status = status.Int()
		}
		if text, ok := fields["text"]; ok {
			result.Body = text.Str()
		}
	}

	e.logger.Debug("browser_fetch response",
		"status", result.Status,
		"error", result.Err,
		"text", truncateForLog(result.Body, 2000),
	)
	return result, nil
}

func truncateForLog(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

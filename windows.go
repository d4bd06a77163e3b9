package main

import (
	"log/slog"
	"strings"
	"time"
)

// windowInspector is the slice of the session the tracker needs: list the
// open windows, focus one and read its name/URL, and report the focused
// window's document ready state.
type windowInspector interface {
	Handles() ([]WindowHandle, error)
	Inspect(handle WindowHandle) (windowInfo, error)
	SwitchTo(handle WindowHandle) error
	ReadyState() (string, error)
}

// pollWindows checks the session's windows every interval until match
// accepts one or the deadline passes. Handles in skip are never inspected.
// Inspection switches focus, so the first matching handle in enumeration
// order wins. A failed inspect (window vanished mid-poll) skips that
// handle for the round.
func pollWindows(ins windowInspector, interval, timeout time.Duration, skip map[WindowHandle]bool, match func(windowInfo) bool) (WindowHandle, windowInfo, bool) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		handles, err := ins.Handles()
		if err == nil {
			for _, handle := range handles {
				if skip[handle] {
					continue
				}
				info, err := ins.Inspect(handle)
				if err != nil {
					continue
				}
				if match(info) {
					return handle, info, true
				}
			}
		}
		time.Sleep(interval)
	}
	return "", windowInfo{}, false
}

// WindowTracker watches the session's window set for the payment popup and
// the order confirmation page.
type WindowTracker struct {
	windows windowInspector
	config  *Config
	logger  *slog.Logger
}

func NewWindowTracker(windows windowInspector, config *Config, logger *slog.Logger) *WindowTracker {
	return &WindowTracker{
		windows: windows,
		config:  config,
		logger:  logger,
	}
}

// WaitForPaymentWindow polls for a window that did not exist before the
// payment trigger fired and that either carries the gateway's window name
// or is already hosted on the gateway. The matched window keeps focus.
// Expiry yields ErrPopupNotFound, which callers treat as soft.
func (t *WindowTracker) WaitForPaymentWindow(existing []WindowHandle, timeout time.Duration) (WindowHandle, error) {
	known := make(map[WindowHandle]bool, len(existing))
	for _, handle := range existing {
		known[handle] = true
	}

	handle, info, ok := pollWindows(t.windows, 500*time.Millisecond, timeout, known, func(info windowInfo) bool {
		return info.Name == t.config.PaymentWindowName || strings.Contains(info.URL, t.config.PaymentHost)
	})
	if !ok {
		return "", ErrPopupNotFound
	}

	t.logger.Debug("payment popup detected", "handle", string(handle), "name", info.Name, "url", info.URL)
	t.waitDocumentReady(timeout)
	return handle, nil
}

// waitDocumentReady waits for the focused window to finish loading. Best
// effort: the outer flow is correct without it, so expiry is silent.
func (t *WindowTracker) waitDocumentReady(timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		state, err := t.windows.ReadyState()
		if err == nil && state == "complete" {
			return
		}
		time.Sleep(500 * time.Millisecond)
	}
}

// AwaitOrderResult polls every open window for a URL containing the order
// confirmation path and returns the first such URL, or "" on expiry.
// Afterwards focus is restored to the payment window if it still exists,
// else the main window; restoration failures are cleanup noise and are
// swallowed.
func (t *WindowTracker) AwaitOrderResult(timeout time.Duration, mainHandle, paymentHandle WindowHandle) string {
	_, info, ok := pollWindows(t.windows, time.Second, timeout, nil, func(info windowInfo) bool {
		return strings.Contains(info.URL, t.config.OrderResultPath)
	})

	t.restoreFocus(paymentHandle, mainHandle)

	detected := ""
	if ok {
		detected = info.URL
	}
	t.logger.Debug("await_order_result outcome", "detected_url", detected)
	return detected
}

func (t *WindowTracker) restoreFocus(preferred ...WindowHandle) {
	handles, err := t.windows.Handles()
	if err != nil {
		return
	}
	open := make(map[WindowHandle]bool, len(handles))
	for _, handle := range handles {
		open[handle] = true
	}
	for _, handle := range preferred {
		if handle == "" || !open[handle] {
			continue
		}
		if err := t.windows.SwitchTo(handle); err == nil {
			return
		}
	}
}

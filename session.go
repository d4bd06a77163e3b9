package main

import (
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// WindowHandle identifies one window/tab within the session. Rod target
// IDs play the role Selenium window handles play on the original site.
type WindowHandle = proto.TargetTargetID

// windowInfo is what the tracker learns about a window after switching
// focus to it: its in-page name and its current URL.
type windowInfo struct {
	Name string
	URL  string
}

// Session owns one live browser for the duration of a run. Exactly one
// window is current at any instant; every operation that needs a specific
// window switches to it first.
type Session struct {
	config   *Config
	logger   *slog.Logger
	browser  *rod.Browser
	launcher *launcher.Launcher
	current  *rod.Page
}

func NewSession(config *Config, logger *slog.Logger) *Session {
	return &Session{
		config: config,
		logger: logger,
	}
}

// Launch starts the browser and opens the main window. System Chrome is
// preferred over a downloaded Chromium; leakless is disabled on Windows to
// avoid the known rod deadlock (go-rod/rod#853).
func (s *Session) Launch() error {
	useLeakless := runtime.GOOS != "windows"

	s.launcher = launcher.New().
		Leakless(useLeakless).
		Headless(s.config.Headless)

	if s.config.BrowserProfilePath != "" {
		s.launcher = s.launcher.UserDataDir(s.config.BrowserProfilePath)
	}

	if chromePath, ok := launcher.LookPath(); ok {
		s.launcher = s.launcher.Bin(chromePath)
		s.logger.Debug("using system chrome", "path", chromePath)
	}

	controlURL, err := s.launcher.Launch()
	if err != nil {
		if strings.Contains(err.Error(), "ProcessSingleton") || strings.Contains(err.Error(), "SingletonLock") {
			return fmt.Errorf("%w: chrome is already running with this profile, close it and retry", ErrSessionUnavailable)
		}
		return fmt.Errorf("%w: launch browser: %v", ErrSessionUnavailable, err)
	}

	s.browser = rod.New().ControlURL(controlURL)
	if err := s.browser.Connect(); err != nil {
		return fmt.Errorf("%w: connect to browser: %v", ErrSessionUnavailable, err)
	}

	page, err := stealth.Page(s.browser)
	if err != nil {
		return fmt.Errorf("%w: create stealth page: %v", ErrSessionUnavailable, err)
	}
	s.current = page

	if s.config.UserAgent != "" {
		err = page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: s.config.UserAgent})
		if err != nil {
			s.logger.Debug("failed to set user agent", "error", err)
		}
	}

	return nil
}

// Navigate loads url in the current window and waits for the load event.
func (s *Session) Navigate(url string) error {
	if err := s.current.Navigate(url); err != nil {
		return sessionError("navigate "+url, err)
	}
	if err := s.current.WaitLoad(); err != nil {
		return sessionError("wait load "+url, err)
	}
	return nil
}

// SetCookies seeds the session with cookies scoped to url before any
// credentialed request runs.
func (s *Session) SetCookies(url string, cookies map[string]string) error {
	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for name, value := range cookies {
		params = append(params, &proto.NetworkCookieParam{
			Name:  name,
			Value: value,
			URL:   url,
		})
	}
	if err := s.browser.SetCookies(params); err != nil {
		return sessionError("set cookies", err)
	}
	return nil
}

// CurrentHandle reports the handle of the window that is current now.
func (s *Session) CurrentHandle() WindowHandle {
	return s.current.TargetID
}

// Handles lists every open window/tab in the session.
func (s *Session) Handles() ([]WindowHandle, error) {
	pages, err := s.browser.Pages()
	if err != nil {
		return nil, sessionError("list windows", err)
	}
	handles := make([]WindowHandle, 0, len(pages))
	for _, page := range pages {
		handles = append(handles, page.TargetID)
	}
	return handles, nil
}

// SwitchTo makes the window identified by handle current. A handle that no
// longer exists is a soft condition: callers fall back to another handle.
func (s *Session) SwitchTo(handle WindowHandle) error {
	page, err := s.browser.PageFromTarget(handle)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrWindowNotFound, handle)
	}
	if _, err := page.Activate(); err != nil {
		return fmt.Errorf("%w: %s", ErrWindowNotFound, handle)
	}
	s.current = page
	return nil
}

// Inspect switches focus to handle and reads its window.name and URL.
// Either read failing is tolerated; only the switch itself can fail.
func (s *Session) Inspect(handle WindowHandle) (windowInfo, error) {
	if err := s.SwitchTo(handle); err != nil {
		return windowInfo{}, err
	}

	var info windowInfo
	if name, err := s.Eval(5*time.Second, `() => window.name || ""`); err == nil {
		info.Name = name.Value.Str()
	}
	if url, err := s.CurrentURL(); err == nil {
		info.URL = url
	}
	return info, nil
}

// CurrentURL reads the current window's location.
func (s *Session) CurrentURL() (string, error) {
	info, err := s.current.Info()
	if err != nil {
		return "", sessionError("read current url", err)
	}
	return info.URL, nil
}

// Eval runs a client-side snippet in the current window with a hard
// deadline. Promise results are awaited, so async scripts resolve to their
// final value.
func (s *Session) Eval(timeout time.Duration, js string, args ...interface{}) (*proto.RuntimeRemoteObject, error) {
	page := s.current.Timeout(timeout)
	obj, err := page.Eval(js, args...)
	if err != nil {
		return nil, sessionError("evaluate script", err)
	}
	return obj, nil
}

// ReadyState reports the current window's document.readyState.
func (s *Session) ReadyState() (string, error) {
	obj, err := s.Eval(5*time.Second, `() => document.readyState`)
	if err != nil {
		return "", err
	}
	return obj.Value.Str(), nil
}

// Alive reports whether the browser still answers.
func (s *Session) Alive() bool {
	if s.browser == nil {
		return false
	}
	_, err := s.browser.Version()
	return err == nil
}

// Close tears the session down. Safe to call after a failed Launch.
func (s *Session) Close() {
	if s.current != nil {
		_ = s.current.Close()
	}
	if s.browser != nil {
		_ = s.browser.Close()
	}
	if s.launcher != nil {
		s.launcher.Cleanup()
	}
}

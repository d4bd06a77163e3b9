package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// RunParams carries everything the caller (CLI or the scheduling GUI)
// resolved before the run: credentials, reservation identifiers, payment
// descriptors and behavior flags.
type RunParams struct {
	UserID   string
	Password string

	CValue    string
	Date      string
	SlotParts []string
	VanCode   string

	GoodName  string
	BuyerName string
	Amount    string

	Cookie string

	BrowserURL string

	SkipOrderWait    bool
	OrderWaitTimeout time.Duration
}

// TerminalStatus classifies how the run ended.
type TerminalStatus int

const (
	StatusOK TerminalStatus = iota
	StatusBrowserError
	StatusWorkflowError
)

// WorkflowState is the mutable record threaded through the run. Each stage
// sets at most one field; nothing is ever reset mid-run.
type WorkflowState struct {
	OrderID         string
	MainWindow      WindowHandle
	PaymentWindow   WindowHandle
	PaymentTrigger  string
	ConfirmationURL string
	Status          TerminalStatus
}

// coerceSlot turns the slot descriptor tokens into the single isvkrr[]
// value: one token passes through unchanged, several are pipe-joined in
// input order.
func coerceSlot(parts []string) string {
	if len(parts) == 1 {
		return parts[0]
	}
	return strings.Join(parts, "|")
}

// parseCookieHeader splits a "name=value; name2=value2" string into pairs,
// dropping malformed chunks.
func parseCookieHeader(header string) map[string]string {
	cookies := make(map[string]string)
	for _, chunk := range strings.Split(header, ";") {
		token := strings.TrimSpace(chunk)
		if token == "" || !strings.Contains(token, "=") {
			continue
		}
		name, value, _ := strings.Cut(token, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		cookies[name] = strings.TrimSpace(value)
	}
	return cookies
}

// Orchestrator owns the end-to-end reservation workflow: authenticate,
// reserve, trigger the payment popup, optionally await the confirmation
// page. Stages run strictly in order; only the popup wait is soft.
type Orchestrator struct {
	config   *Config
	params   *RunParams
	logger   *slog.Logger
	session  *Session
	executor *Executor
	tracker  *WindowTracker

	state WorkflowState
}

func NewOrchestrator(config *Config, params *RunParams, session *Session, executor *Executor, tracker *WindowTracker, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		config:   config,
		params:   params,
		logger:   logger,
		session:  session,
		executor: executor,
		tracker:  tracker,
	}
}

// State exposes the run record for the final summary.
func (o *Orchestrator) State() *WorkflowState {
	return &o.state
}

func (o *Orchestrator) requestTimeout() time.Duration {
	return time.Duration(o.config.RequestTimeoutSeconds * float64(time.Second))
}

// Run drives the whole workflow. Teardown always executes: the session is
// closed unless the caller asked to keep it open, no matter which stage
// failed.
func (o *Orchestrator) Run() (err error) {
	defer func() {
		if err != nil {
			if isBrowserError(err) {
				o.state.Status = StatusBrowserError
			} else {
				o.state.Status = StatusWorkflowError
			}
		}
		if !o.config.KeepBrowserOpen {
			o.session.Close()
		}
	}()

	if err := o.launch(); err != nil {
		return err
	}
	if err := o.authenticate(); err != nil {
		return err
	}
	reservationHTML, err := o.reserve()
	if err != nil {
		return err
	}

	orderID, err := extractOrderID(reservationHTML)
	if err != nil {
		return err
	}
	o.state.OrderID = orderID
	o.logger.Debug("order id extracted", "order_id", orderID)

	if err := o.renderReservation(reservationHTML); err != nil {
		return err
	}
	if err := o.injectPaymentFields(o.params.GoodName, o.params.BuyerName, o.params.Amount); err != nil {
		return err
	}

	existing, err := o.session.Handles()
	if err != nil {
		return err
	}

	trigger, err := o.triggerPayment()
	if err != nil {
		return err
	}
	o.state.PaymentTrigger = trigger

	paymentHandle, err := o.tracker.WaitForPaymentWindow(existing, o.requestTimeout())
	if err != nil {
		if !errors.Is(err, ErrPopupNotFound) {
			return err
		}
		// Soft: the popup may have been blocked or renamed. The payment
		// may still be proceeding, so the run carries on without focus.
		fmt.Fprintf(os.Stderr, "Failed to detect payment popup: %v\n", err)
	} else {
		o.state.PaymentWindow = paymentHandle
	}

	if !o.params.SkipOrderWait {
		fmt.Fprintf(os.Stderr, "결제 완료 확인 페이지를 기다리는 중입니다 (최대 %d초)...\n",
			int(o.params.OrderWaitTimeout.Seconds()))
		o.state.ConfirmationURL = o.tracker.AwaitOrderResult(
			o.params.OrderWaitTimeout,
			o.state.MainWindow,
			o.state.PaymentWindow,
		)
	}

	return nil
}

func (o *Orchestrator) launch() error {
	if err := o.session.Launch(); err != nil {
		return err
	}
	if err := o.session.Navigate(o.params.BrowserURL); err != nil {
		return err
	}
	o.state.MainWindow = o.session.CurrentHandle()

	if o.params.Cookie != "" {
		if err := o.session.SetCookies(o.params.BrowserURL, parseCookieHeader(o.params.Cookie)); err != nil {
			return err
		}
		// Reload so the seeded cookies take effect on the visible page.
		if err := o.session.Navigate(o.params.BrowserURL); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) formHeaders(referer string) []HeaderField {
	return []HeaderField{
		{Name: "Accept", Value: formAcceptHeader},
		{Name: "Content-Type", Value: "application/x-www-form-urlencoded; charset=UTF-8"},
		{Name: "Origin", Value: o.config.OriginHost},
		{Name: "Referer", Value: referer},
	}
}

func (o *Orchestrator) authenticate() error {
	result, err := o.executor.Do(RequestSpec{
		Method:  "POST",
		URL:     o.config.LoginURL,
		Headers: o.formHeaders(o.params.BrowserURL),
		Body: []FormField{
			{Key: "userid", Value: o.params.UserID},
			{Key: "passwd", Value: o.params.Password},
		},
		Timeout: o.requestTimeout(),
	})
	if err != nil {
		return err
	}
	if err := ensureSuccess("Login request", result); err != nil {
		return err
	}

	// Load a page so the user sees the logged-in state once the
	// automation finishes.
	return o.session.Navigate(o.config.PostLoginURL)
}

func (o *Orchestrator) reserve() (string, error) {
	result, err := o.executor.Do(RequestSpec{
		Method:  "POST",
		URL:     o.config.ReservationURL,
		Headers: o.formHeaders(o.config.PostLoginURL),
		Body: []FormField{
			{Key: "cvalue", Value: o.params.CValue},
			{Key: "cdate", Value: o.params.Date},
			{Key: "isvkrr[]", Value: coerceSlot(o.params.SlotParts)},
			{Key: "van_code", Value: o.params.VanCode},
		},
		Timeout: o.requestTimeout(),
	})
	if err != nil {
		return "", err
	}
	if err := ensureSuccess("Reservation request", result); err != nil {
		return "", err
	}
	return result.Body, nil
}

// PrintSummary emits the final human-readable status lines.
func (o *Orchestrator) PrintSummary() {
	fmt.Printf("Reservation verified with id '%s'.\n", o.state.OrderID)
	if o.state.PaymentTrigger != "" {
		fmt.Printf("Payment popup status: triggered (%s)\n", o.state.PaymentTrigger)
	} else {
		fmt.Println("Payment popup status: n/a")
	}
	if o.state.PaymentWindow == "" {
		fmt.Println("Payment popup window was not detected; continue in the browser if the payment is still open.")
	}
	if !o.params.SkipOrderWait {
		if o.state.ConfirmationURL != "" {
			fmt.Printf("Final order confirmation detected at '%s'.\n", o.state.ConfirmationURL)
		} else {
			fmt.Println("Timed out waiting for the order confirmation page. 결제창에서 진행이 끝나지 않았다면 계속 진행해 주세요.")
		}
	}
	if o.config.KeepBrowserOpen {
		fmt.Println("자동화 완료 후에도 브라우저 창을 열어 두었습니다.")
	} else {
		fmt.Println("자동화가 끝난 뒤 브라우저 세션을 종료했습니다.")
	}
}

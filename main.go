package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// slotFlag collects -reserve-slot tokens. The descriptor can arrive as one
// pre-joined value ('2025-10-22|5|22|8|4000') or as separate tokens that
// get pipe-joined in input order.
type slotFlag []string

func (s *slotFlag) String() string {
	return strings.Join(*s, "|")
}

func (s *slotFlag) Set(value string) error {
	*s = append(*s, value)
	return nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("goyang", flag.ExitOnError)

	configPath := fs.String("config", "config.yaml", "Path to configuration file")

	loginUserID := fs.String("login-userid", "", "userid parameter for the login request (or GYT_USERID)")
	loginPassword := fs.String("login-password", "", "passwd parameter for the login request (or GYT_PASSWD)")

	reserveCValue := fs.String("reserve-cvalue", "", "cvalue parameter for the reservation request")
	reserveDate := fs.String("reserve-date", "", "cdate parameter for the reservation request (YYYY-MM-DD)")
	var reserveSlot slotFlag
	fs.Var(&reserveSlot, "reserve-slot", "isvkrr[] parameter part; repeat the flag for separate tokens")
	reserveVanCode := fs.String("reserve-van-code", "", "van_code parameter for the reservation request")

	court := fs.String("court", "", "Venue name; resolves cvalue, slot descriptor and price from the built-in tables")
	courtNumber := fs.Int("court-number", 1, "Court number within the venue (with -court)")
	slotHour := fs.Int("slot-hour", 0, "Slot start hour, e.g. 18 for 18:00-20:00 (with -court)")
	halfPrice := fs.Bool("half-price", false, "Apply the citizen/senior half-price discount (with -court)")

	paymentGoodName := fs.String("payment-good-name", "", "good_name parameter for the payment popup request")
	paymentBuyerName := fs.String("payment-buyer-name", "", "buyr_name parameter for the payment popup request")
	paymentAmount := fs.String("payment-amount", "", "good_mny parameter (amount) for the payment popup request")
	paymentURL := fs.String("payment-url", "", "Endpoint URL for the payment popup request")

	cookie := fs.String("cookie", "", "Cookie string to pre-populate in the browser (name=value; name2=value2)")
	userAgent := fs.String("user-agent", "", "User-Agent header sent with each request")
	browserURL := fs.String("browser-url", "", "URL to open in the browser before sending requests")
	postLoginURL := fs.String("post-login-url", "", "URL to load after login so the browser reflects the session")

	keepBrowserOpen := fs.Bool("keep-browser-open", false, "Leave the browser window open after automation completes")
	reuseBrowserTab := fs.Bool("reuse-browser-tab", false, "Render intermediate pages in the current tab (disabled)")
	headless := fs.Bool("headless", false, "Run the browser headless")

	skipOrderWait := fs.Bool("skip-order-wait", true, "Do not wait for the final order confirmation page")
	waitOrder := fs.Bool("wait-order", false, "Wait for the final order confirmation page (overrides -skip-order-wait)")
	orderWaitTimeout := fs.Int("order-wait-timeout", 240, "Seconds to wait for the order confirmation page")

	curlLogFile := fs.String("curl-log-file", "curl.log", "Path to append curl-style request logs (empty disables)")
	timeout := fs.Float64("timeout", 15.0, "Request timeout in seconds")
	debug := fs.Bool("debug", false, "Enable detailed debug logging")

	if err := fs.Parse(args); err != nil {
		return 1
	}

	// Optional .env with GYT_USERID / GYT_PASSWD so credentials can stay
	// off the command line.
	_ = godotenv.Load()
	if *loginUserID == "" {
		*loginUserID = os.Getenv("GYT_USERID")
	}
	if *loginPassword == "" {
		*loginPassword = os.Getenv("GYT_PASSWD")
	}

	config, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["payment-url"] {
		config.PaymentURL = *paymentURL
	}
	if set["user-agent"] {
		config.UserAgent = *userAgent
	}
	if set["post-login-url"] {
		config.PostLoginURL = *postLoginURL
	}
	if set["keep-browser-open"] {
		config.KeepBrowserOpen = *keepBrowserOpen
	}
	if set["headless"] {
		config.Headless = *headless
	}
	if set["curl-log-file"] {
		config.CurlLogFile = *curlLogFile
	}
	if set["timeout"] {
		config.RequestTimeoutSeconds = *timeout
	}
	if set["order-wait-timeout"] {
		config.OrderWaitTimeoutSeconds = *orderWaitTimeout
	}
	if set["debug"] {
		config.DebugMode = *debug
	}

	if *reuseBrowserTab {
		fmt.Fprintln(os.Stderr, "[INFO] --reuse-browser-tab 옵션은 비활성화되며 결제 팝업은 새 창으로 열립니다.")
	}

	params := &RunParams{
		UserID:           *loginUserID,
		Password:         *loginPassword,
		CValue:           *reserveCValue,
		Date:             *reserveDate,
		SlotParts:        reserveSlot,
		VanCode:          *reserveVanCode,
		GoodName:         *paymentGoodName,
		BuyerName:        *paymentBuyerName,
		Amount:           *paymentAmount,
		Cookie:           *cookie,
		BrowserURL:       config.LoginURL,
		SkipOrderWait:    !*waitOrder && *skipOrderWait,
		OrderWaitTimeout: time.Duration(config.OrderWaitTimeoutSeconds) * time.Second,
	}
	if set["browser-url"] {
		params.BrowserURL = *browserURL
	}

	if *court != "" {
		if err := resolveCourtParams(params, *court, *courtNumber, *slotHour, *halfPrice); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to resolve court selection: %v\n", err)
			return 1
		}
	}

	if err := validateParams(params); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid arguments: %v\n", err)
		fs.Usage()
		return 1
	}

	audit, err := NewCurlLog(config.CurlLogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open curl log: %v\n", err)
		return 1
	}
	defer audit.Close()

	level := slog.LevelInfo
	if config.DebugMode {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	if audit.RunID() != "" {
		logger = logger.With("run_id", audit.RunID())
	}

	fmt.Println("고양시 테니스 코트 예약 자동화")
	fmt.Printf("Target: %s\n", config.ReservationURL)
	fmt.Printf("Reservation: cvalue=%s cdate=%s slot=%s\n", params.CValue, params.Date, coerceSlot(params.SlotParts))
	if config.DebugMode {
		fmt.Println("🔍 DEBUG MODE - Detailed logging enabled")
	}

	session := NewSession(config, logger)
	executor := NewExecutor(session, audit, logger)
	tracker := NewWindowTracker(session, config, logger)
	orchestrator := NewOrchestrator(config, params, session, executor, tracker, logger)

	if err := orchestrator.Run(); err != nil {
		if isBrowserError(err) {
			fmt.Fprintf(os.Stderr, "Browser automation failed: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Failed to complete workflow: %v\n", err)
		}
		return 1
	}

	orchestrator.PrintSummary()
	return 0
}

// resolveCourtParams fills reservation and payment fields from the static
// venue tables, the way the scheduling GUI does before invoking this
// binary. Explicit flags always win over resolved values.
func resolveCourtParams(params *RunParams, courtName string, courtNumber, slotHour int, halfPrice bool) error {
	if params.Date == "" {
		return errors.New("-reserve-date is required with -court")
	}
	date, err := ParseReservationDate(params.Date)
	if err != nil {
		return err
	}
	if !validSlotHour(slotHour) {
		return fmt.Errorf("invalid slot hour %d (valid: %v)", slotHour, slotStartHours)
	}

	info, code, err := CourtCode(courtName, courtNumber)
	if err != nil {
		return err
	}

	amount := RateFor(date, slotHour, halfPrice)
	if params.Amount == "" {
		params.Amount = fmt.Sprintf("%d", amount)
	}
	if params.CValue == "" {
		params.CValue = info.CValue
	}
	if len(params.SlotParts) == 0 {
		params.SlotParts = BuildSlotParts(params.Date, info, code, slotHour, amount)
	}
	if params.GoodName == "" {
		params.GoodName = fmt.Sprintf("%s %d번 예약", courtName, courtNumber)
	}
	if params.BuyerName == "" {
		params.BuyerName = params.UserID
	}
	return nil
}

func validateParams(params *RunParams) error {
	var missing []string
	if params.UserID == "" {
		missing = append(missing, "-login-userid")
	}
	if params.Password == "" {
		missing = append(missing, "-login-password")
	}
	if params.CValue == "" {
		missing = append(missing, "-reserve-cvalue")
	}
	if params.Date == "" {
		missing = append(missing, "-reserve-date")
	}
	if len(params.SlotParts) == 0 {
		missing = append(missing, "-reserve-slot")
	}
	if params.GoodName == "" {
		missing = append(missing, "-payment-good-name")
	}
	if params.BuyerName == "" {
		missing = append(missing, "-payment-buyer-name")
	}
	if params.Amount == "" {
		missing = append(missing, "-payment-amount")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required flags: %s", strings.Join(missing, ", "))
	}

	if _, err := ParseReservationDate(params.Date); err != nil {
		return err
	}
	return nil
}

package main

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Site endpoints. These are the documented defaults for gytennis.or.kr and
// its KCP payment gateway; config.yaml or flags can override every one.
const (
	defaultLoginURL       = "https://www.gytennis.or.kr/Login"
	defaultReservationURL = "https://www.gytennis.or.kr/rsvConfirm"
	defaultPostLoginURL   = "https://www.gytennis.or.kr/daily"
	defaultPaymentPopURL  = "https://spay.kcp.co.kr/kcpPaypop.do?encType="
	defaultOriginHost     = "https://www.gytennis.or.kr"

	defaultPaymentWindowName = "KCPPayPopup"
	defaultPaymentHost       = "spay.kcp.co.kr"
	defaultOrderResultPath   = "ordrRst"

	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/129.0.0.0 Safari/537.36"

	formAcceptHeader = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8"
)

type Config struct {
	LoginURL       string `yaml:"login_url"`
	ReservationURL string `yaml:"reservation_url"`
	PostLoginURL   string `yaml:"post_login_url"`
	PaymentURL     string `yaml:"payment_url"`
	OriginHost     string `yaml:"origin_host"`

	PaymentWindowName string `yaml:"payment_window_name"`
	PaymentHost       string `yaml:"payment_host"`
	OrderResultPath   string `yaml:"order_result_path"`

	UserAgent string `yaml:"user_agent"`

	BrowserProfilePath string `yaml:"browser_profile_path"`
	Headless           bool   `yaml:"headless"`
	KeepBrowserOpen    bool   `yaml:"keep_browser_open"`

	RequestTimeoutSeconds   float64 `yaml:"request_timeout_seconds"`
	OrderWaitTimeoutSeconds int     `yaml:"order_wait_timeout_seconds"`

	CurlLogFile string `yaml:"curl_log_file"`

	DebugMode bool `yaml:"debug_mode"`
}

func DefaultConfig() *Config {
	return &Config{
		LoginURL:       defaultLoginURL,
		ReservationURL: defaultReservationURL,
		PostLoginURL:   defaultPostLoginURL,
		PaymentURL:     defaultPaymentPopURL,
		OriginHost:     defaultOriginHost,

		PaymentWindowName: defaultPaymentWindowName,
		PaymentHost:       defaultPaymentHost,
		OrderResultPath:   defaultOrderResultPath,

		UserAgent: defaultUserAgent,

		RequestTimeoutSeconds:   15.0,
		OrderWaitTimeoutSeconds: 240,

		CurlLogFile: "curl.log",
	}
}

func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := config.Save(path); err != nil {
			return nil, err
		}
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}

	if config.BrowserProfilePath != "" {
		if err := os.MkdirAll(config.BrowserProfilePath, 0755); err != nil {
			return nil, err
		}
	}

	return config, nil
}

func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

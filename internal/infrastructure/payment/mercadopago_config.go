package payment

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

const (
	mercadoPagoAPIBaseURL = "https://api.mercadopago.com"
	mercadoPagoTimeout    = 15 * time.Second
)

// Errors for configuration validation
var (
	ErrMercadoPagoMissingAccessToken = errors.New("mercadopago: missing access token")
	ErrMercadoPagoInvalidBaseURL     = errors.New("mercadopago: invalid API base URL")
	ErrMercadoPagoInvalidNotifyURL   = errors.New("mercadopago: invalid notification URL")
)

// MercadoPagoConfig contains the credentials for the Mercado Pago payments API
type MercadoPagoConfig struct {
	// AccessToken is the seller's private access token
	AccessToken string
	// WebhookSecret signs webhook deliveries. Signature checks are skipped when empty.
	WebhookSecret string
	// NotificationURL is sent with every payment so the gateway knows where to deliver webhooks
	NotificationURL string
	// BaseURL overrides the API host, mostly for tests
	BaseURL string
	Timeout time.Duration
}

// Validate validates the configuration
func (c *MercadoPagoConfig) Validate() error {
	if strings.TrimSpace(c.AccessToken) == "" {
		return ErrMercadoPagoMissingAccessToken
	}
	if c.BaseURL != "" {
		if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			return ErrMercadoPagoInvalidBaseURL
		}
	}
	if c.NotificationURL != "" {
		if u, err := url.Parse(c.NotificationURL); err != nil || u.Scheme != "https" && u.Scheme != "http" {
			return ErrMercadoPagoInvalidNotifyURL
		}
	}
	return nil
}

func (c *MercadoPagoConfig) baseURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	return mercadoPagoAPIBaseURL
}

func (c *MercadoPagoConfig) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return mercadoPagoTimeout
}

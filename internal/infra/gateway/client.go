package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"payment_reminder_bot/internal/domain/messaging"
	"payment_reminder_bot/internal/domain/settings"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 64 << 10
	maxErrorBody   = 512
)

var (
	ErrNoRecipient       = errors.New("recipient has no phone digits")
	ErrEmptyMessage      = errors.New("message text is empty")
	ErrInvalidGatewayURL = errors.New("gateway URL must be an absolute http(s) URL")
)

// Config controls negotiation timing and the query-key fallback.
type Config struct {
	CountryCode   string
	QueryKeyHosts []string      // gateway hosts that also accept ?api_key=
	RetryCooldown time.Duration // wait before retrying a rate-limited candidate
	RetryAttempts int           // retries of the same candidate after a 429
	Timeout       time.Duration // per HTTP exchange
	MaxPerSecond  float64       // request pacing across all sends, 0 disables it
}

// Attempt is one HTTP exchange with the gateway.
type Attempt struct {
	Candidate string
	Status    int
	JSON      any    // decoded body when it was valid JSON
	Raw       string // body text
}

// Client implements messaging.Sender against an HTTP gateway whose request
// shape is negotiated per send.
type Client struct {
	httpClient *http.Client
	cfg        Config
	limiter    *rate.Limiter
	logger     *logrus.Entry
	sleep      func(ctx context.Context, d time.Duration) error
}

func NewClient(cfg Config, logger *logrus.Entry) *Client {
	if cfg.CountryCode == "" {
		cfg.CountryCode = DefaultCountryCode
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RetryAttempts < 0 {
		cfg.RetryAttempts = 0
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.MaxPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.MaxPerSecond), 1)
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		limiter:    limiter,
		logger:     logger,
		sleep:      sleepCtx,
	}
}

// Send delivers text to recipient. Errors are *messaging.DeliveryError.
func (c *Client) Send(ctx context.Context, s settings.Settings, recipient, text string) error {
	_, err := c.Deliver(ctx, s, recipient, text)
	return err
}

// Deliver negotiates a request shape with the gateway and returns the last exchange.
// Negotiation stops at the first 2xx, moves on after a 422, retries the same
// candidate after a 429 and stops on any other status.
func (c *Client) Deliver(ctx context.Context, s settings.Settings, recipient, text string) (Attempt, error) {
	if err := s.Validate(); err != nil {
		return Attempt{}, messaging.NewValidationError(err)
	}
	if err := validateGatewayURL(s.GatewayURL); err != nil {
		return Attempt{}, messaging.NewValidationError(err)
	}
	to := NormalizePhone(recipient, c.cfg.CountryCode)
	if to == "" {
		return Attempt{}, messaging.NewValidationError(ErrNoRecipient)
	}
	if strings.TrimSpace(text) == "" {
		return Attempt{}, messaging.NewValidationError(ErrEmptyMessage)
	}

	log := c.logger.WithField("recipient", to)
	var last Attempt
	for _, cand := range candidatesFor(s.GatewayURL, c.cfg.QueryKeyHosts) {
		att, err := c.exchange(ctx, s, cand, to, text)
		last = att
		if err != nil {
			return att, err
		}

		switch {
		case att.Status >= 200 && att.Status < 300:
			log.WithFields(logrus.Fields{"candidate": att.Candidate, "status": att.Status}).Info("Gateway accepted message")
			return att, nil
		case att.Status == http.StatusUnprocessableEntity:
			log.WithField("candidate", att.Candidate).Debug("Gateway rejected request shape, trying next candidate")
			continue
		case att.Status == http.StatusUnauthorized:
			return att, classified(messaging.KindUnauthorized, att)
		default:
			return att, classified(messaging.KindFatal, att)
		}
	}
	return last, classified(messaging.KindAllCandidatesFailed, last)
}

// exchange posts one candidate, retrying it after a cooldown while the gateway
// answers 429. A non-nil error means negotiation must stop.
func (c *Client) exchange(ctx context.Context, s settings.Settings, cand candidate, to, text string) (Attempt, error) {
	for try := 0; ; try++ {
		att, err := c.post(ctx, s, cand, to, text)
		if err != nil {
			return att, &messaging.DeliveryError{Kind: messaging.KindNetwork, Candidate: cand.String(), Err: err}
		}
		if att.Status != http.StatusTooManyRequests {
			return att, nil
		}
		if try >= c.cfg.RetryAttempts {
			return att, classified(messaging.KindRateLimited, att)
		}
		c.logger.WithFields(logrus.Fields{
			"candidate": att.Candidate,
			"attempt":   try + 1,
			"cooldown":  c.cfg.RetryCooldown.String(),
		}).Warn("Gateway rate limited, retrying same candidate after cooldown")
		if err := c.sleep(ctx, c.cfg.RetryCooldown); err != nil {
			de := classified(messaging.KindRateLimited, att)
			de.Err = err
			return att, de
		}
	}
}

func (c *Client) post(ctx context.Context, s settings.Settings, cand candidate, to, text string) (Attempt, error) {
	att := Attempt{Candidate: cand.String()}

	payload, err := json.Marshal(cand.shape.build(to, text, s.SenderNumber))
	if err != nil {
		return att, fmt.Errorf("encode request body: %w", err)
	}
	target := s.GatewayURL
	if cand.auth == authQuery {
		if target, err = withAPIKey(s.GatewayURL, s.APIKey); err != nil {
			return att, fmt.Errorf("build query-key URL: %w", err)
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return att, fmt.Errorf("wait for send slot: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return att, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if cand.auth == authBearer {
		req.Header.Set("Authorization", "Bearer "+s.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return att, err
	}
	defer resp.Body.Close()

	att.Status = resp.StatusCode
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.logger.WithError(err).WithField("candidate", att.Candidate).Debug("Could not read gateway response body")
	}
	att.Raw = strings.TrimSpace(string(raw))
	if att.Raw != "" {
		var decoded any
		if json.Unmarshal(raw, &decoded) == nil {
			att.JSON = decoded
		}
	}
	return att, nil
}

func classified(kind messaging.ErrorKind, att Attempt) *messaging.DeliveryError {
	body := att.Raw
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "..."
	}
	return &messaging.DeliveryError{Kind: kind, Status: att.Status, Body: body, Candidate: att.Candidate}
}

func validateGatewayURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: %q", ErrInvalidGatewayURL, raw)
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

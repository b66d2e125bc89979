// Package client talks to the catalog store API on behalf of the storefront.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/example/lastara-storefront/internal/domain/subscription"
	"github.com/example/lastara-storefront/internal/readmodel"
	"go.uber.org/zap"
)

// User-facing newsletter messages
const (
	MsgPhoneRequired     = "Please enter your WhatsApp number"
	MsgInvalidPhone      = "Please enter a valid 10-digit mobile number"
	MsgSubscribed        = "Thank you! You will receive updates on WhatsApp."
	MsgAlreadySubscribed = "This number is already subscribed."
	MsgGeneric           = "Something went wrong. Please try again."
)

// Source tags subscriptions made from this client
const Source = "terminal"

var ErrAlreadySubscribed = errors.New("already subscribed")

// ValidationError is a local input check that failed before any request was sent
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string { return e.Message }
func (e *ValidationError) Unwrap() error { return e.Err }

// StatusError is an unexpected HTTP response
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("status %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("status %d", e.Code)
}

// UserMessage maps a Subscribe error to the text shown next to the form
func UserMessage(err error) string {
	var ve *ValidationError
	switch {
	case err == nil:
		return MsgSubscribed
	case errors.As(err, &ve):
		return ve.Message
	case errors.Is(err, ErrAlreadySubscribed):
		return MsgAlreadySubscribed
	default:
		return MsgGeneric
	}
}

// ValidatePhone runs the same format check as the server and returns the trimmed number
func ValidatePhone(phone string) (string, error) {
	phone, err := subscription.ValidatePhone(phone)
	switch {
	case errors.Is(err, subscription.ErrPhoneRequired):
		return "", &ValidationError{Message: MsgPhoneRequired, Err: err}
	case err != nil:
		return "", &ValidationError{Message: MsgInvalidPhone, Err: err}
	}
	return phone, nil
}

type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func New(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  logger.Named("client"),
	}
}

// ListProducts returns the full catalog, newest first
func (c *Client) ListProducts(ctx context.Context) ([]readmodel.ProductReadModel, error) {
	var products []readmodel.ProductReadModel
	if err := c.getJSON(ctx, "/api/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

// ListSlides returns the hero slides, newest first
func (c *Client) ListSlides(ctx context.Context) ([]readmodel.SlideReadModel, error) {
	var slides []readmodel.SlideReadModel
	if err := c.getJSON(ctx, "/api/hero", &slides); err != nil {
		return nil, err
	}
	return slides, nil
}

// ListTestimonials returns the customer quotes shown below the catalog
func (c *Client) ListTestimonials(ctx context.Context) ([]readmodel.TestimonialReadModel, error) {
	var testimonials []readmodel.TestimonialReadModel
	if err := c.getJSON(ctx, "/api/testimonials", &testimonials); err != nil {
		return nil, err
	}
	return testimonials, nil
}

type subscribeRequest struct {
	Phone          string `json:"phone"`
	RecaptchaToken string `json:"recaptcha_token,omitempty"`
	Source         string `json:"source"`
}

// Subscribe validates the phone locally and only then submits it
func (c *Client) Subscribe(ctx context.Context, phone, token string) error {
	phone, err := ValidatePhone(phone)
	if err != nil {
		return err
	}

	body, err := json.Marshal(subscribeRequest{Phone: phone, RecaptchaToken: token, Source: Source})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/newsletter", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("subscribe request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusConflict:
		return ErrAlreadySubscribed
	case resp.StatusCode >= 300:
		return statusError(resp)
	}
	c.logger.Info("subscribed", zap.String("source", Source))
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("GET %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	c.logger.Debug("fetched", zap.String("path", path), zap.Duration("duration", time.Since(start)))
	return nil
}

func statusError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = json.Unmarshal(raw, &body)
	return &StatusError{Code: resp.StatusCode, Message: body.Error}
}

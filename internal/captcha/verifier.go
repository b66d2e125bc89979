package captcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultEndpoint is Google's reCAPTCHA verification URL
const DefaultEndpoint = "https://www.google.com/recaptcha/api/siteverify"

var (
	ErrMissingToken       = errors.New("verification token is required")
	ErrVerificationFailed = errors.New("verification failed")
)

// Verifier checks a human-verification token issued to the browser
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	Score      *float64 `json:"score,omitempty"`
	Action     string   `json:"action,omitempty"`
	Hostname   string   `json:"hostname,omitempty"`
	ErrorCodes []string `json:"error-codes,omitempty"`
}

// RecaptchaVerifier verifies reCAPTCHA v2/v3 tokens against the siteverify endpoint
type RecaptchaVerifier struct {
	secret   string
	minScore float64
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

// NewRecaptchaVerifier creates a verifier. A v3 token scoring below minScore is rejected;
// v2 responses carry no score and only need success.
func NewRecaptchaVerifier(secret string, minScore float64, logger *zap.Logger) *RecaptchaVerifier {
	return &RecaptchaVerifier{
		secret:   secret,
		minScore: minScore,
		endpoint: DefaultEndpoint,
		client:   &http.Client{Timeout: 5 * time.Second},
		logger:   logger.Named("captcha"),
	}
}

// WithEndpoint points the verifier at a different siteverify URL
func (v *RecaptchaVerifier) WithEndpoint(endpoint string) *RecaptchaVerifier {
	v.endpoint = endpoint
	return v
}

func (v *RecaptchaVerifier) Verify(ctx context.Context, token, remoteIP string) error {
	if strings.TrimSpace(token) == "" {
		return ErrMissingToken
	}

	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("siteverify request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("siteverify returned status %d", resp.StatusCode)
	}

	var body siteverifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("failed to decode siteverify response: %w", err)
	}

	if !body.Success {
		v.logger.Info("token rejected", zap.Strings("error_codes", body.ErrorCodes))
		return ErrVerificationFailed
	}
	if body.Score != nil && *body.Score < v.minScore {
		v.logger.Info("token scored below threshold",
			zap.Float64("score", *body.Score),
			zap.Float64("min_score", v.minScore))
		return ErrVerificationFailed
	}
	return nil
}

// NopVerifier accepts every token; used when no secret is configured
type NopVerifier struct{}

func (NopVerifier) Verify(context.Context, string, string) error { return nil }

// New returns a RecaptchaVerifier, or a NopVerifier when secret is empty
func New(secret string, minScore float64, logger *zap.Logger) Verifier {
	if secret == "" {
		logger.Warn("RECAPTCHA_SECRET not set, newsletter verification disabled")
		return NopVerifier{}
	}
	return NewRecaptchaVerifier(secret, minScore, logger)
}

package media

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultAPIBase is the Cloudinary upload API root
const DefaultAPIBase = "https://api.cloudinary.com/v1_1"

var ErrDestroyFailed = errors.New("media destroy failed")

// Destroyer removes an uploaded asset from the media CDN
type Destroyer interface {
	Destroy(ctx context.Context, publicID string) error
}

type destroyResponse struct {
	Result string `json:"result"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// CloudinaryClient issues signed image destroy calls
type CloudinaryClient struct {
	cloudName string
	apiKey    string
	apiSecret string
	apiBase   string
	client    *http.Client
	logger    *zap.Logger
	now       func() time.Time
}

func NewCloudinaryClient(cloudName, apiKey, apiSecret string, logger *zap.Logger) *CloudinaryClient {
	return &CloudinaryClient{
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		apiBase:   DefaultAPIBase,
		client:    &http.Client{Timeout: 10 * time.Second},
		logger:    logger.Named("media"),
		now:       time.Now,
	}
}

// WithAPIBase points the client at a different API root
func (c *CloudinaryClient) WithAPIBase(base string) *CloudinaryClient {
	c.apiBase = strings.TrimRight(base, "/")
	return c
}

// Destroy deletes the image with publicID. An asset that no longer exists counts as destroyed.
func (c *CloudinaryClient) Destroy(ctx context.Context, publicID string) error {
	params := map[string]string{
		"public_id": publicID,
		"timestamp": strconv.FormatInt(c.now().Unix(), 10),
	}

	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}
	form.Set("api_key", c.apiKey)
	form.Set("signature", Sign(params, c.apiSecret))

	endpoint := fmt.Sprintf("%s/%s/image/destroy", c.apiBase, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDestroyFailed, err)
	}
	defer resp.Body.Close()

	var body destroyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: status %d: %v", ErrDestroyFailed, resp.StatusCode, err)
	}

	switch {
	case body.Result == "ok":
		c.logger.Debug("image destroyed", zap.String("public_id", publicID))
		return nil
	case body.Result == "not found":
		c.logger.Info("image already gone", zap.String("public_id", publicID))
		return nil
	case body.Error != nil:
		return fmt.Errorf("%w: %s", ErrDestroyFailed, body.Error.Message)
	default:
		return fmt.Errorf("%w: status %d result %q", ErrDestroyFailed, resp.StatusCode, body.Result)
	}
}

// Sign computes the Cloudinary API signature: SHA-1 over the
// alphabetically sorted key=value pairs joined by '&', followed by the secret.
func Sign(params map[string]string, apiSecret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + params[k]
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + apiSecret))
	return hex.EncodeToString(sum[:])
}

// LogDestroyer only logs; used when no CDN credentials are configured
type LogDestroyer struct {
	logger *zap.Logger
}

func NewLogDestroyer(logger *zap.Logger) *LogDestroyer {
	return &LogDestroyer{logger: logger.Named("media")}
}

func (d *LogDestroyer) Destroy(_ context.Context, publicID string) error {
	d.logger.Info("skipping image destroy, CDN not configured", zap.String("public_id", publicID))
	return nil
}

// New returns a Cloudinary client when all credentials are present, otherwise a LogDestroyer
func New(cloudName, apiKey, apiSecret string, logger *zap.Logger) Destroyer {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		logger.Warn("cloudinary credentials missing, image deletes will only be logged")
		return NewLogDestroyer(logger)
	}
	return NewCloudinaryClient(cloudName, apiKey, apiSecret, logger)
}

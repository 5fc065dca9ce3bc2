// internal/app/system/frappe/client.go
package frappe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/stratasched/internal/app/system/metrics"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// DefaultMethodPrefix is the dotted module path of the scheduler API.
const DefaultMethodPrefix = "kk_new_app.api.work_order_scheduler"

const maxResponseBytes = 10 << 20

// Config configures the ERP client.
type Config struct {
	BaseURL      string
	MethodPrefix string

	// Token auth ("token key:secret") takes precedence over BearerToken.
	APIKey      string
	APISecret   string
	BearerToken string

	Timeout time.Duration

	// Outbound request budget. Rate <= 0 disables limiting.
	Rate  float64
	Burst int
}

// Client calls whitelisted methods on the ERP server.
type Client struct {
	baseURL    string
	prefix     string
	authHeader string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *zap.Logger

	redis    *redis.Client
	cacheTTL time.Duration
}

// New constructs a Client.
func New(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	prefix := strings.TrimSuffix(cfg.MethodPrefix, ".")
	if prefix == "" {
		prefix = DefaultMethodPrefix
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		prefix:  prefix,
		log:     logger,
	}

	switch {
	case cfg.APIKey != "" && cfg.APISecret != "":
		c.authHeader = "token " + cfg.APIKey + ":" + cfg.APISecret
		c.httpClient = &http.Client{Timeout: timeout}
	case cfg.BearerToken != "":
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.BearerToken, TokenType: "Bearer"})
		c.httpClient = oauth2.NewClient(context.Background(), ts)
		c.httpClient.Timeout = timeout
	default:
		c.httpClient = &http.Client{Timeout: timeout}
	}

	if cfg.Rate > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.Rate), burst)
	} else {
		c.limiter = rate.NewLimiter(rate.Inf, 0)
	}

	return c
}

// UseRedisCache enables caching of utilization reports.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

// BaseURL returns the ERP base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ping calls the ERP's built-in ping method.
func (c *Client) Ping(ctx context.Context) error {
	var pong string
	if err := c.Call(ctx, "frappe.ping", nil, &pong); err != nil {
		return err
	}
	if pong != "pong" {
		return fmt.Errorf("frappe ping: unexpected reply %q", pong)
	}
	return nil
}

// Scheduler returns the fully qualified name of a scheduler API method.
func (c *Client) Scheduler(method string) string {
	return c.prefix + "." + method
}

// Call invokes a whitelisted method with JSON args and decodes the
// response's "message" into out (when out is non-nil). Each call is
// attempted once.
func (c *Client) Call(ctx context.Context, method string, args any, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("frappe %s: %w", method, err)
	}

	start := time.Now()
	err := c.do(ctx, method, args, out)
	elapsed := time.Since(start)
	metrics.ObserveRPC(method, elapsed, err)

	if err != nil {
		c.log.Warn("frappe rpc failed",
			zap.String("method", method),
			zap.Duration("duration", elapsed),
			zap.Error(err))
		return err
	}
	c.log.Debug("frappe rpc",
		zap.String("method", method),
		zap.Duration("duration", elapsed))
	return nil
}

func (c *Client) do(ctx context.Context, method string, args any, out any) error {
	if args == nil {
		args = map[string]any{}
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("frappe %s: encode args: %w", method, err)
	}

	endpoint := c.baseURL + "/api/method/" + method
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("frappe %s: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.authHeader != "" {
		req.Header.Set("Authorization", c.authHeader)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("frappe %s: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("frappe %s: read response: %w", method, err)
	}

	if resp.StatusCode >= 300 {
		return parseRemoteError(method, resp.StatusCode, body)
	}

	var env struct {
		Message json.RawMessage `json:"message"`
		Exc     string          `json:"exc"`
	}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &env); err != nil {
			return fmt.Errorf("frappe %s: decode response: %w", method, err)
		}
	}
	if env.Exc != "" {
		return parseRemoteError(method, resp.StatusCode, body)
	}
	if out == nil || len(env.Message) == 0 || string(env.Message) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Message, out); err != nil {
		return fmt.Errorf("frappe %s: decode message: %w", method, err)
	}
	return nil
}

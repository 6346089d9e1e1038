package fonnte

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

	"go.uber.org/zap"
)

const (
	defaultBaseURL     = "https://api.fonnte.com"
	defaultCountryCode = "62"
)

// Config controls how the Fonnte client behaves.
type Config struct {
	Token       string
	BaseURL     string
	CountryCode string
	Timeout     time.Duration
	HTTPClient  *http.Client
	Logger      *zap.Logger
}

// Client sends WhatsApp messages through the Fonnte send API.
type Client struct {
	token       string
	baseURL     string
	countryCode string
	httpClient  *http.Client
	logger      *zap.Logger
}

func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("fonnte: token is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	countryCode := strings.TrimSpace(cfg.CountryCode)
	if countryCode == "" {
		countryCode = defaultCountryCode
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		token:       cfg.Token,
		baseURL:     baseURL,
		countryCode: countryCode,
		httpClient:  httpClient,
		logger:      logger,
	}, nil
}

// APIError is returned when the send endpoint answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("fonnte: send failed with status %d: %s", e.StatusCode, e.Body)
}

type sendRequest struct {
	Target      string `json:"target"`
	Message     string `json:"message"`
	CountryCode string `json:"countryCode"`
}

// Send delivers a text message to the target WhatsApp number.
func (c *Client) Send(ctx context.Context, target, message string) error {
	payload, err := json.Marshal(sendRequest{
		Target:      target,
		Message:     message,
		CountryCode: c.countryCode,
	})
	if err != nil {
		return fmt.Errorf("fonnte: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/send", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("fonnte: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fonnte: send request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	c.logger.Debug("Message sent",
		zap.String("target", target),
		zap.Int("length", len(message)))
	return nil
}

package pstclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/you-humble/paystack-checkout/internal/client/converter"
	"github.com/you-humble/paystack-checkout/internal/client/dto"
	"github.com/you-humble/paystack-checkout/internal/model"
	"github.com/you-humble/paystack-checkout/platform/logger"
)

const (
	initializePath = "/transaction/initialize"
	verifyPath     = "/transaction/verify/"

	maxBodyBytes = 1 << 20
	maxLogBody   = 512
)

// Config is copied into the client at construction and never changes.
type Config struct {
	SecretKey string
	BaseURL   string
	Timeout   time.Duration
}

type client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config, httpClient *http.Client) *client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &client{cfg: cfg, http: httpClient}
}

func (c *client) Initialize(
	ctx context.Context,
	params model.GatewayInitializeParams,
) (*model.InitializeResult, error) {
	const op = "paystack.client.Initialize"

	req, err := converter.InitializeParamsToPaystack(params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, model.ErrValidation, err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%s: marshal: %w", op, err)
	}

	env, status, err := c.do(ctx, http.MethodPost, initializePath, body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, model.ErrGateway, err)
	}

	if status/100 != 2 || !env.Status {
		logger.Error(ctx, "paystack initialize rejected",
			logger.Int("http_status", status),
			logger.String("provider_message", env.Message),
		)
		return nil, fmt.Errorf("%s: %w: http %d", op, model.ErrGateway, status)
	}

	var data dto.PaystackInitializeData
	if err := json.Unmarshal(env.Data, &data); err != nil || data.Reference == "" || data.AuthorizationURL == "" {
		logger.Error(ctx, "paystack initialize malformed data",
			logger.String("data", truncate(env.Data)),
		)
		return nil, fmt.Errorf("%s: %w: malformed data", op, model.ErrGateway)
	}

	return converter.PaystackInitializeToModel(data), nil
}

// Verify returns a transaction with a non-success status when the provider
// reports the payment as not settled or unknown. Only failures to get an
// answer are errors.
func (c *client) Verify(ctx context.Context, reference string) (*model.GatewayTransaction, error) {
	const op = "paystack.client.Verify"

	env, status, err := c.do(ctx, http.MethodGet, verifyPath+url.PathEscape(reference), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, model.ErrGateway, err)
	}

	switch {
	case status >= http.StatusInternalServerError:
		logger.Error(ctx, "paystack verify server error",
			logger.Int("http_status", status),
			logger.String("provider_message", env.Message),
		)
		return nil, fmt.Errorf("%s: %w: http %d", op, model.ErrGateway, status)
	case !env.Status && (status == http.StatusBadRequest || status == http.StatusNotFound):
		// e.g. 400 "Transaction reference not found".
		return &model.GatewayTransaction{
			Reference:       reference,
			Status:          "failed",
			GatewayResponse: env.Message,
		}, nil
	case status/100 != 2 || !env.Status:
		// 401/403 bad key, 429 throttled: no verdict on the transaction.
		logger.Error(ctx, "paystack verify rejected",
			logger.Int("http_status", status),
			logger.String("provider_message", env.Message),
		)
		return nil, fmt.Errorf("%s: %w: http %d", op, model.ErrGateway, status)
	}

	var data dto.PaystackVerifyData
	if err := json.Unmarshal(env.Data, &data); err != nil || data.Status == "" {
		logger.Error(ctx, "paystack verify malformed data",
			logger.String("data", truncate(env.Data)),
		)
		return nil, fmt.Errorf("%s: %w: malformed data", op, model.ErrGateway)
	}
	if data.Reference == "" {
		data.Reference = reference
	}

	return converter.PaystackVerifyToModel(data), nil
}

func (c *client) do(ctx context.Context, method, path string, body []byte) (*dto.PaystackEnvelope, int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Error(ctx, "paystack request failed",
			logger.String("method", method),
			logger.String("path", path),
			logger.Duration("took", time.Since(start)),
			logger.Bool("timeout", errors.Is(err, context.DeadlineExceeded)),
			logger.ErrorF(err),
		)
		return nil, 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}

	var env dto.PaystackEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logger.Error(ctx, "paystack response is not json",
			logger.Int("http_status", resp.StatusCode),
			logger.String("body", truncate(raw)),
		)
		return nil, resp.StatusCode, fmt.Errorf("decode body: %w", err)
	}

	logger.Debug(ctx, "paystack call",
		logger.String("method", method),
		logger.String("path", path),
		logger.Int("http_status", resp.StatusCode),
		logger.Duration("took", time.Since(start)),
	)

	return &env, resp.StatusCode, nil
}

func truncate(b []byte) string {
	if len(b) > maxLogBody {
		return string(b[:maxLogBody]) + "..."
	}
	return string(b)
}

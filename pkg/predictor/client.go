package predictor

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

	"github.com/firesight-ai/firesight-backend/pkg/config"
	dbtypes "github.com/firesight-ai/firesight-backend/pkg/db/types"
	pkgerrors "github.com/firesight-ai/firesight-backend/pkg/errors"
)

const responseBodyReadLimit int64 = 4096

var errBaseURLRequired = errors.New("predictor base URL is required")

// Client wraps the external risk-scoring service. One POST per analyze call,
// no retries: scorer failures surface to the caller of the same request.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds a scorer client from configuration.
func NewClient(cfg config.PredictorConfig, opts ...Option) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.URL)
	if baseURL == "" {
		return nil, errBaseURLRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// Prediction is the scorer's verdict for a coordinate pair.
type Prediction struct {
	Result           string             `json:"result"`
	TotalProbability float64            `json:"total_probability"`
	GridData         dbtypes.GridPoints `json:"grid_data"`
}

// Predict submits the coordinates and returns the scorer's output verbatim.
func (c *Client) Predict(ctx context.Context, lat, lng float64) (*Prediction, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUpstream, "predictor client not configured")
	}

	payload, err := json.Marshal(map[string]float64{"lat": lat, "lng": lng})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "marshal predict request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "build predict request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "prediction service unreachable")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(
			pkgerrors.CodeUpstream,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			"prediction request failed",
		)
	}

	var prediction Prediction
	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "decode prediction response")
	}
	if strings.TrimSpace(prediction.Result) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUpstream, "prediction response missing result")
	}

	return &prediction, nil
}

// Package syncclient implements the HTTP transport the sync engine and
// relay use to reach a remote replica.
package syncclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/klauspost/compress/zstd"

	"khata/internal/core/id"
	"khata/internal/domain/sync"
)

// compressionThreshold is the body size above which push payloads are
// zstd-compressed. Small payloads are not worth the round trip cost.
const compressionThreshold = 16 * 1024

// Client posts table snapshots to and fetches them from a remote
// instance speaking the same sync protocol.
type Client struct {
	baseURL    string
	httpClient *http.Client
	encoder    *zstd.Encoder
}

// New creates a sync client for the remote base URL.
func New(baseURL string) *Client {
	// zstd.NewWriter with nil sink is reused via EncodeAll.
	encoder, _ := zstd.NewWriter(nil)
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		encoder:    encoder,
	}
}

var _ sync.Client = (*Client)(nil)

type pushRequest struct {
	Table   string        `json:"table"`
	Records []sync.Record `json:"records"`
	Owner   string        `json:"owner"`
}

type fetchResponse struct {
	Records []sync.Record `json:"records"`
}

// Push sends a table snapshot to the remote, which upserts by id.
func (c *Client) Push(ctx context.Context, table, owner string, records []sync.Record) (sync.PushResult, error) {
	body, err := json.Marshal(pushRequest{Table: table, Records: records, Owner: owner})
	if err != nil {
		return sync.PushResult{}, fmt.Errorf("marshal push request: %w", err)
	}

	contentEncoding := ""
	if len(body) > compressionThreshold {
		body = c.encoder.EncodeAll(body, nil)
		contentEncoding = "zstd"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/sync", bytes.NewReader(body))
	if err != nil {
		return sync.PushResult{}, fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if contentEncoding != "" {
		req.Header.Set("Content-Encoding", contentEncoding)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return sync.PushResult{}, fmt.Errorf("push %s: %w", table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return sync.PushResult{}, c.remoteError(resp)
	}

	var result sync.PushResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return sync.PushResult{}, fmt.Errorf("decode push response: %w", err)
	}
	return result, nil
}

// Fetch retrieves the remote's rows for a table.
func (c *Client) Fetch(ctx context.Context, table, owner string, firmID *id.ID) ([]sync.Record, error) {
	query := url.Values{}
	query.Set("table", table)
	query.Set("owner", owner)
	if firmID != nil {
		query.Set("firmId", firmID.String())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/sync/fetch?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build fetch request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.remoteError(resp)
	}

	var result fetchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode fetch response: %w", err)
	}
	return result.Records, nil
}

func (c *Client) remoteError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return fmt.Errorf("remote returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
}

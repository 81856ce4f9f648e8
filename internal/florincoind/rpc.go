// Package florincoind fetches block headers from a Florincoin node over
// JSON-RPC.
package florincoind

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/florincoin/floretarget/internal/types"
)

// HeaderSource is the subset of the node RPC needed to export headers.
type HeaderSource interface {
	GetBlockCount(ctx context.Context) (int64, error)
	GetBlockHash(ctx context.Context, height int64) (string, error)
	GetBlockHeader(ctx context.Context, hash string) (*types.BlockHeader, error)
}

// RPCClient implements HeaderSource using JSON-RPC over HTTP.
type RPCClient struct {
	url      string
	user     string
	password string
	client   *http.Client
	idSeq    atomic.Int64
}

// NewRPCClient creates a new node JSON-RPC client.
func NewRPCClient(url, user, password string) *RPCClient {
	return &RPCClient{
		url:      url,
		user:     user,
		password: password,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// call makes a JSON-RPC call and decodes the result into out.
func (c *RPCClient) call(ctx context.Context, out interface{}, method string, params ...interface{}) error {
	req := RPCRequest{
		JSONRPC: "1.0",
		ID:      c.idSeq.Add(1),
		Method:  method,
		Params:  params,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.user, c.password)

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("RPC request failed: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	// The node answers RPC errors with a 500 status and a JSON body.
	var rpcResp RPCResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return fmt.Errorf("unmarshal response (status %d): %w", httpResp.StatusCode, err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}

	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return fmt.Errorf("unmarshal %s result: %w", method, err)
	}
	return nil
}

// GetBlockCount returns the height of the node's best chain.
func (c *RPCClient) GetBlockCount(ctx context.Context) (int64, error) {
	var height int64
	if err := c.call(ctx, &height, "getblockcount"); err != nil {
		return 0, fmt.Errorf("getblockcount: %w", err)
	}
	return height, nil
}

// GetBlockHash returns the hash of the best-chain block at height.
func (c *RPCClient) GetBlockHash(ctx context.Context, height int64) (string, error) {
	var hash string
	if err := c.call(ctx, &hash, "getblockhash", height); err != nil {
		return "", fmt.Errorf("getblockhash %d: %w", height, err)
	}
	return hash, nil
}

// GetBlockHeader returns the header of the block with the given hash.
func (c *RPCClient) GetBlockHeader(ctx context.Context, hash string) (*types.BlockHeader, error) {
	var headerHex string
	if err := c.call(ctx, &headerHex, "getblockheader", hash, false); err != nil {
		return nil, fmt.Errorf("getblockheader %s: %w", hash, err)
	}

	raw, err := hex.DecodeString(headerHex)
	if err != nil {
		return nil, fmt.Errorf("decode header %s: %w", hash, err)
	}
	h, err := types.DeserializeHeader(raw)
	if err != nil {
		return nil, fmt.Errorf("decode header %s: %w", hash, err)
	}
	if got := h.HashHex(); got != hash {
		return nil, fmt.Errorf("header for %s hashes to %s", hash, got)
	}
	return h, nil
}

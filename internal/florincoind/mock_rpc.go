package florincoind

import (
	"context"
	"fmt"
	"sync"

	"github.com/florincoin/floretarget/internal/types"
)

// MockRPC implements HeaderSource over an in-memory chain for testing.
type MockRPC struct {
	mu sync.Mutex

	Headers []types.BlockHeader
	Calls   int

	// Error overrides
	GetBlockCountErr  error
	GetBlockHashErr   error
	GetBlockHeaderErr error
}

// NewMockRPC creates a mock node serving headers as its best chain.
func NewMockRPC(headers []types.BlockHeader) *MockRPC {
	return &MockRPC{Headers: headers}
}

func (m *MockRPC) GetBlockCount(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.GetBlockCountErr != nil {
		return 0, m.GetBlockCountErr
	}
	return int64(len(m.Headers)) - 1, nil
}

func (m *MockRPC) GetBlockHash(_ context.Context, height int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.GetBlockHashErr != nil {
		return "", m.GetBlockHashErr
	}
	if height < 0 || height >= int64(len(m.Headers)) {
		return "", &RPCError{Code: -8, Message: "Block height out of range"}
	}
	return m.Headers[height].HashHex(), nil
}

func (m *MockRPC) GetBlockHeader(_ context.Context, hash string) (*types.BlockHeader, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.GetBlockHeaderErr != nil {
		return nil, m.GetBlockHeaderErr
	}
	for i := range m.Headers {
		if m.Headers[i].HashHex() == hash {
			h := m.Headers[i]
			return &h, nil
		}
	}
	return nil, fmt.Errorf("getblockheader %s: %w", hash, &RPCError{Code: -5, Message: "Block not found"})
}

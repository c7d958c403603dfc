package assist

import (
	"context"
	"sync"
)

// MockLLM is a scripted LLMClient for local runs and tests. It replays the
// queued replies in order (sticking on the last one) and records every
// request it sees.
type MockLLM struct {
	Replies []string
	Err     error
	Usage   *Usage

	mu       sync.Mutex
	calls    int
	Requests []Request
}

func (m *MockLLM) Complete(_ context.Context, req Request) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return Result{}, m.Err
	}
	text := ""
	if len(m.Replies) > 0 {
		i := m.calls
		if i >= len(m.Replies) {
			i = len(m.Replies) - 1
		}
		text = m.Replies[i]
	}
	m.calls++
	return Result{Text: text, Usage: m.Usage}, nil
}

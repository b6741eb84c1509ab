package healthcheck

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// MockChecker is a configurable checker for tests
type MockChecker struct {
	name     string
	status   Status
	message  string
	metadata interface{}
	delay    time.Duration

	mu        sync.Mutex
	callCount int
}

func NewMockChecker(name string) *MockChecker {
	return &MockChecker{name: name, status: StatusHealthy}
}

func (m *MockChecker) WithStatus(status Status) *MockChecker {
	m.status = status
	return m
}

func (m *MockChecker) WithMessage(message string) *MockChecker {
	m.message = message
	return m
}

func (m *MockChecker) WithMetadata(metadata interface{}) *MockChecker {
	m.metadata = metadata
	return m
}

func (m *MockChecker) WithDelay(delay time.Duration) *MockChecker {
	m.delay = delay
	return m
}

func (m *MockChecker) GetCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

func (m *MockChecker) Check(ctx context.Context) Check {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	start := time.Now()
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return Check{
				Name:        m.name,
				Status:      StatusUnhealthy,
				Message:     ctx.Err().Error(),
				LastChecked: start,
				Duration:    time.Since(start),
			}
		}
	}

	return Check{
		Name:        m.name,
		Status:      m.status,
		Message:     m.message,
		Metadata:    m.metadata,
		LastChecked: start,
		Duration:    time.Since(start),
	}
}

func assertResponseStructure(t *testing.T, response Response) {
	t.Helper()
	assert.NotEmpty(t, response.Status)
	assert.NotEmpty(t, response.Version)
	assert.False(t, response.Timestamp.IsZero())
	assert.NotNil(t, response.Checks)
	for _, check := range response.Checks {
		assert.NotEmpty(t, check.Name)
		assert.NotEmpty(t, check.Status)
		assert.False(t, check.LastChecked.IsZero())
	}
}

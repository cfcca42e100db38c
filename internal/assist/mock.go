package assist

import (
	"context"
	"fmt"

	"github.com/marginalia-app/marginalia/internal/logutil"
)

// MockProvider is a deterministic offline provider for local development and
// tests (--no-ai). The output embeds a prefix of the instruction so callers
// can see what would have been sent.
type MockProvider struct{}

// NewMockProvider creates the mock provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// Complete echoes a canned response derived from the instruction.
func (p *MockProvider) Complete(_ context.Context, instruction string) (string, error) {
	return fmt.Sprintf("[mock completion] %s", logutil.TruncateForLog(instruction, 120)), nil
}

// Package assist proxies caller text to a generative-text provider behind a
// fixed set of instruction templates. Providers are interchangeable: the
// service only needs "submit instruction, receive text".
package assist

import "context"

// Provider submits a natural-language instruction to a generative-text
// backend and returns the primary textual result.
type Provider interface {
	Complete(ctx context.Context, instruction string) (string, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, instruction string) (string, error)

func (f ProviderFunc) Complete(ctx context.Context, instruction string) (string, error) {
	return f(ctx, instruction)
}

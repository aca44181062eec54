package providers

import "context"

// CompletionProvider defines a text-generation backend exposing a single
// synchronous completion call. Output length is bounded by the provider's
// configured token cap rather than a wall-clock deadline.
type CompletionProvider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

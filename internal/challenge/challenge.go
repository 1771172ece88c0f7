package challenge

import "context"

// Completer drives the out-of-band authentication step (3-D Secure / SCA).
// Complete blocks until the user finished the provider-controlled flow at
// redirectURL, or returns early with ctx's error on timeout/cancellation.
// The provider is re-queried for the real outcome afterwards, so Complete
// only reports that the flow finished, not whether it authenticated.
type Completer interface {
	Complete(ctx context.Context, redirectURL string) error
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, redirectURL string) error

func (f CompleterFunc) Complete(ctx context.Context, redirectURL string) error {
	return f(ctx, redirectURL)
}

package engine

import "context"

// Token is a single-shot cancellation handle shared by whoever requested a
// computer move and the search computing it. Once cancelled, any result the
// search still delivers is void.
type Token struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewToken returns a live token derived from parent.
func NewToken(parent context.Context) *Token {
	ctx, cancel := context.WithCancel(parent)
	return &Token{ctx: ctx, cancel: cancel}
}

// Context is done once the token is cancelled. Searches should watch it.
func (t *Token) Context() context.Context {
	return t.ctx
}

// Cancel marks the token cancelled. Calling it more than once is harmless.
func (t *Token) Cancel() {
	t.cancel()
}

// Cancelled reports whether Cancel has been called.
func (t *Token) Cancelled() bool {
	return t.ctx.Err() != nil
}

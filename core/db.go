package core

import "context"

// Transactor runs fn within a single storage transaction; fn receives a
// context that carries the transaction and must be passed down to every
// repository call made inside it. A non-nil error from fn rolls everything
// back.
//
// Multi-step lifecycle operations (application decisions, fee creation and
// payment, bulk attendance marking, announcement publication) must run under
// RunInTx so their side-effect writes land atomically with the primary write.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

package repository

import "context"

// IStore groups the repositories bound to one database handle, either the
// pool or an open transaction.
type IStore interface {
	Actions() IAction
	TemporaryContents() ITemporaryContent
	Teams() ITeam
	Outbox() IOutbox
}

// ITransactor runs fn inside a single database transaction. fn receives a
// store bound to that transaction; returning an error rolls everything back.
type ITransactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, store IStore) error) error
}

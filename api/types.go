package api

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"trustbyte/domain"
)

// Storage abstracts persistence for handlers.
type Storage interface {
	CreateUser(ctx context.Context, u domain.User) error
	UserByEmail(ctx context.Context, email string) (domain.User, error)
	FetchTasks(ctx context.Context, owner string) ([]domain.Task, error)
	InsertTask(ctx context.Context, t domain.Task) (domain.Task, error)
	ReplaceTask(ctx context.Context, t domain.Task) (bool, error)
	DeleteTask(ctx context.Context, id primitive.ObjectID, owner string) (bool, error)
}

// Authenticator is implemented by types able to extract caller identities
// from Authorization headers.
type Authenticator interface {
	IdentityFromAuthHeader(string) (Identity, error)
}

// TokenIssuer mints session tokens after a successful login.
type TokenIssuer interface {
	IssueToken(u domain.User, now time.Time) (string, error)
}

// Deduper prevents reprocessing of duplicate create requests.
type Deduper interface {
	// Add records the idempotency key and returns true if it was newly added.
	Add(ctx context.Context, userID, key string) (bool, error)
	// Remove deletes a previously added key, used when the write fails so the
	// client may retry.
	Remove(ctx context.Context, userID, key string) error
}

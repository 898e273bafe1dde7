package gaffer

import (
	"context"

	"github.com/google/uuid"
)

// User identifies the caller of a graph operation.
type User struct {
	ID        string
	DataAuths []string
}

// UnknownUserID is reported for operations without a user in their context.
const UnknownUserID = "UNKNOWN"

type userKey struct{}

// WithUser returns a context carrying u.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFrom returns the user carried by ctx, or the unknown user.
func UserFrom(ctx context.Context) User {
	if u, ok := ctx.Value(userKey{}).(User); ok {
		return u
	}
	return User{ID: UnknownUserID}
}

func newOperationID() string {
	return uuid.NewString()
}

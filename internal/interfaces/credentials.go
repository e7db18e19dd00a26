package interfaces

import (
	"context"

	"nexus-trading-bot/internal/types"
)

// CredentialResolver returns decrypted exchange keys for an account or
// types.ErrCredentialsMissing. The core never stores the result.
type CredentialResolver interface {
	Resolve(ctx context.Context, accountID string) (types.Credentials, error)
}

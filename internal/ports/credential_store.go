package ports

import "context"

type CredentialStore interface {
	Get(ctx context.Context, ref string) (string, error)
	Put(ctx context.Context, ref string, credential string) error
	Delete(ctx context.Context, ref string) error
}

package policies

import "context"

type CredentialsPort interface {
	Login(ctx context.Context, username, password string) (token string, err error)
}

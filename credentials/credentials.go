// Package credentials supplies the identity and secret used to authenticate
// remote calls.
package credentials

import (
	"context"
	"fmt"

	"github.com/kbukum/apikit/util"
)

// Credentials is an identity and its secret (password, key or token).
type Credentials struct {
	Identity   string
	Credential string
}

// IsZero reports whether both fields are empty.
func (c Credentials) IsZero() bool { return c.Identity == "" && c.Credential == "" }

// String masks the secret.
func (c Credentials) String() string {
	return fmt.Sprintf("%s:%s", c.Identity, util.Mask(c.Credential))
}

// Supplier returns the credentials for a call. It is invoked once per
// dispatch attempt, so rotated secrets are picked up without rebuilding.
type Supplier interface {
	Credentials(ctx context.Context) (Credentials, error)
}

// SupplierFunc adapts a function to Supplier.
type SupplierFunc func(ctx context.Context) (Credentials, error)

func (f SupplierFunc) Credentials(ctx context.Context) (Credentials, error) { return f(ctx) }

// Static returns a Supplier that always yields c.
func Static(c Credentials) Supplier {
	return SupplierFunc(func(context.Context) (Credentials, error) { return c, nil })
}

package rest

import (
	"context"
	"encoding/base64"
	"net/http"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kbukum/apikit/credentials"
	apperrors "github.com/kbukum/apikit/errors"
	"github.com/kbukum/apikit/httpclient"
	"github.com/kbukum/apikit/logger"
)

// Filter names registered by default.
const (
	FilterBasicAuth   = "basic-auth"
	FilterBearerToken = "bearer-token"
	FilterJWTBearer   = "jwt-bearer"
	FilterRequestID   = "request-id"
	FilterDate        = "date"
	FilterUserAgent   = "user-agent"
)

// Filter is the last transformation of a built request, typically signing.
// It must return a new request and leave req untouched.
type Filter interface {
	Filter(ctx context.Context, req *httpclient.Request) (*httpclient.Request, error)
}

// FilterFunc adapts a function to Filter.
type FilterFunc func(ctx context.Context, req *httpclient.Request) (*httpclient.Request, error)

// Filter calls f.
func (f FilterFunc) Filter(ctx context.Context, req *httpclient.Request) (*httpclient.Request, error) {
	return f(ctx, req)
}

// BasicAuth sends identity and credential as HTTP basic authentication.
func BasicAuth(supplier credentials.Supplier) Filter {
	return FilterFunc(func(ctx context.Context, req *httpclient.Request) (*httpclient.Request, error) {
		creds, err := supplier.Credentials(ctx)
		if err != nil {
			return nil, err
		}
		token := base64.StdEncoding.EncodeToString([]byte(creds.Identity + ":" + creds.Credential))
		return req.WithHeader("Authorization", "Basic "+token), nil
	})
}

// BearerToken sends the credential as a bearer token.
func BearerToken(supplier credentials.Supplier) Filter {
	return FilterFunc(func(ctx context.Context, req *httpclient.Request) (*httpclient.Request, error) {
		creds, err := supplier.Credentials(ctx)
		if err != nil {
			return nil, err
		}
		if creds.Credential == "" {
			return nil, apperrors.Configuration("bearer-token filter requires a credential")
		}
		return req.WithHeader("Authorization", "Bearer "+creds.Credential), nil
	})
}

// JWTBearer signs a short-lived HS256 token with the credential as key and the
// identity as issuer and subject.
func JWTBearer(supplier credentials.Supplier, ttl time.Duration, now func() time.Time) Filter {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if now == nil {
		now = time.Now
	}
	return FilterFunc(func(ctx context.Context, req *httpclient.Request) (*httpclient.Request, error) {
		creds, err := supplier.Credentials(ctx)
		if err != nil {
			return nil, err
		}
		if creds.Credential == "" {
			return nil, apperrors.Configuration("jwt-bearer filter requires a credential")
		}
		issued := now()
		claims := gojwt.RegisteredClaims{
			Issuer:    creds.Identity,
			Subject:   creds.Identity,
			Audience:  gojwt.ClaimStrings{req.URL().Host},
			IssuedAt:  gojwt.NewNumericDate(issued),
			ExpiresAt: gojwt.NewNumericDate(issued.Add(ttl)),
			ID:        uuid.NewString(),
		}
		signed, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte(creds.Credential))
		if err != nil {
			return nil, apperrors.Configuration("sign jwt: %v", err).WithCause(err)
		}
		return req.WithHeader("Authorization", "Bearer "+signed), nil
	})
}

// RequestID sets X-Request-ID from the context, or a new UUID, unless present.
func RequestID() Filter {
	return FilterFunc(func(ctx context.Context, req *httpclient.Request) (*httpclient.Request, error) {
		if req.HeaderValue("X-Request-ID") != "" {
			return req, nil
		}
		id, ok := logger.RequestIDFromContext(ctx)
		if !ok {
			id = uuid.NewString()
		}
		return req.WithHeader("X-Request-ID", id), nil
	})
}

// Date sets the Date header.
func Date(now func() time.Time) Filter {
	if now == nil {
		now = time.Now
	}
	return FilterFunc(func(_ context.Context, req *httpclient.Request) (*httpclient.Request, error) {
		return req.WithHeader("Date", now().UTC().Format(http.TimeFormat)), nil
	})
}

// UserAgent sets User-Agent unless the request already has one.
func UserAgent(ua string) Filter {
	return FilterFunc(func(_ context.Context, req *httpclient.Request) (*httpclient.Request, error) {
		if ua == "" || req.HeaderValue("User-Agent") != "" {
			return req, nil
		}
		return req.WithHeader("User-Agent", ua), nil
	})
}

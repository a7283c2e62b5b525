package engine

import (
	"context"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	apperrors "github.com/kbukum/apikit/errors"
	"github.com/kbukum/apikit/executor"
	"github.com/kbukum/apikit/paging"
	"github.com/kbukum/apikit/rest"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Call invokes key and converts the result to T. Results that are already a
// T are returned as is; generic JSON values are decoded into T; nil becomes
// the zero T.
func Call[T any](ctx context.Context, c *Context, key string, args rest.Args) (T, error) {
	v, err := c.Invoke(ctx, key, args)
	if err != nil {
		var zero T
		return zero, err
	}
	return convert[T](key, v)
}

// CallAsync is the asynchronous Call. The conversion runs on the user executor.
func CallAsync[T any](ctx context.Context, c *Context, key string, args rest.Args) *executor.Future[T] {
	return executor.Then(c.user, c.InvokeAsync(ctx, key, args), func(v any) (T, error) {
		return convert[T](key, v)
	})
}

// List returns the page sequence of key with items converted to T.
func List[T any](c *Context, key string, args rest.Args) (*paging.Pages[T], error) {
	fetch, err := c.pageFetcher(key, args)
	if err != nil {
		return nil, err
	}
	return paging.New(func(ctx context.Context, marker string) (paging.Page[T], error) {
		page, err := fetch(ctx, marker)
		if err != nil {
			return paging.Page[T]{}, err
		}
		items := make([]T, 0, len(page.Items))
		for _, item := range page.Items {
			v, err := convert[T](key, item)
			if err != nil {
				return paging.Page[T]{}, err
			}
			items = append(items, v)
		}
		return paging.Page[T]{Items: items, Marker: page.Marker}, nil
	}), nil
}

func convert[T any](key string, v any) (T, error) {
	var out T
	if v == nil {
		return out, nil
	}
	if t, ok := v.(T); ok {
		return t, nil
	}
	switch v.(type) {
	case map[string]any, []any:
	default:
		return out, apperrors.Parse(fmt.Errorf("%s returned %T, not %T", key, v, out)).
			WithDetail("operation", key)
	}
	raw, err := json.Marshal(v)
	if err == nil {
		err = json.Unmarshal(raw, &out)
	}
	if err != nil {
		return out, apperrors.Parse(err).WithDetail("operation", key)
	}
	return out, nil
}

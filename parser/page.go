package parser

import (
	"cmp"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/kbukum/apikit/httpclient"
	"github.com/kbukum/apikit/paging"
)

var errInvalidJSON = errors.New("body is not valid json")

// PageParser converts a listing response into one page.
type PageParser[T any] interface {
	ParsePage(resp *httpclient.Response) (paging.Page[T], error)
}

// PageFunc adapts a function to PageParser.
type PageFunc[T any] func(resp *httpclient.Response) (paging.Page[T], error)

// ParsePage calls f.
func (f PageFunc[T]) ParsePage(resp *httpclient.Response) (paging.Page[T], error) { return f(resp) }

// ErasePage hides the item type of a page parser.
func ErasePage[T any](p PageParser[T]) PageParser[any] {
	return PageFunc[any](func(resp *httpclient.Response) (paging.Page[any], error) {
		page, err := p.ParsePage(resp)
		if err != nil {
			return paging.Page[any]{}, err
		}
		items := make([]any, len(page.Items))
		for i, item := range page.Items {
			items[i] = item
		}
		return paging.Page[any]{Items: items, Marker: page.Marker}, nil
	})
}

// JSONPage reads items from the array at itemsPath (the whole body when
// empty) and the next marker from markerPath. A missing, null or empty marker
// ends the listing.
func JSONPage[T any](itemsPath, markerPath string) PageParser[T] {
	return PageFunc[T](func(resp *httpclient.Response) (paging.Page[T], error) {
		var page paging.Page[T]
		body, err := readBody(resp)
		if err != nil || len(body) == 0 {
			return page, err
		}
		if !gjson.ValidBytes(body) {
			return page, parseError(resp, errInvalidJSON)
		}

		items := gjson.ParseBytes(body)
		if itemsPath != "" {
			items = items.Get(itemsPath)
		}
		if items.Exists() && !items.IsArray() && items.Type != gjson.Null {
			return page, parseError(resp, fmt.Errorf("%s is not an array", cmp.Or(itemsPath, "body")))
		}
		for _, raw := range items.Array() {
			var item T
			if err := json.UnmarshalFromString(raw.Raw, &item); err != nil {
				return page, parseError(resp, err)
			}
			page.Items = append(page.Items, item)
		}

		if markerPath != "" {
			if m := gjson.GetBytes(body, markerPath); m.Exists() && m.Type != gjson.Null {
				page.Marker = m.String()
			}
		}
		return page, nil
	})
}

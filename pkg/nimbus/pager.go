package nimbus

import (
	"context"
	"encoding/json"
	"net/http"
)

// Page holds one decoded page of a listing response. Pages are consumed by
// the iterator and discarded; they are not retained across fetches.
type Page[T any] struct {
	Items    []T
	NextPage string
}

// PageIterator lazily walks a paginated listing endpoint. The cursor is a
// request descriptor: the initial listing request first, then the absolute
// next_page URL each response provides, followed verbatim. The sequence ends
// when a page carries no next_page marker. A page with zero items but a
// next_page marker does not end the sequence.
//
// An iterator owns its cursor and is not safe for concurrent use; each
// traversal needs its own instance. Fetch failures surface through Err with
// the dispatcher's error taxonomy; items already yielded stand.
type PageIterator[T any] struct {
	client  *Client
	next    *Request
	itemKey string
	auth    AuthType
	buf     []T
	current T
	count   int
	err     error
}

// NewPageIterator returns an iterator over a listing endpoint. itemKey names
// the envelope field holding each page's items (for example "channels").
func NewPageIterator[T any](c *Client, first *Request, itemKey string) *PageIterator[T] {
	return &PageIterator[T]{client: c, next: first, itemKey: itemKey, auth: first.Auth}
}

// Next advances the iterator, fetching further pages as needed. It returns
// false when the sequence is exhausted or a fetch failed; check Err.
func (it *PageIterator[T]) Next(ctx context.Context) bool {
	for len(it.buf) == 0 {
		if it.err != nil || it.next == nil {
			return false
		}
		page, err := it.fetch(ctx)
		if err != nil {
			it.err = err
			return false
		}
		it.buf = page.Items
		if page.NextPage == "" {
			it.next = nil
		} else {
			it.next = &Request{Method: http.MethodGet, URL: page.NextPage, Auth: it.auth}
		}
	}
	it.current = it.buf[0]
	it.buf = it.buf[1:]
	it.count++
	return true
}

// Item returns the item produced by the last successful Next call.
func (it *PageIterator[T]) Item() T { return it.current }

// Count returns the number of items yielded so far.
func (it *PageIterator[T]) Count() int { return it.count }

// Err returns the error that ended the sequence, if any.
func (it *PageIterator[T]) Err() error { return it.err }

func (it *PageIterator[T]) fetch(ctx context.Context) (*Page[T], error) {
	res, err := it.client.Send(ctx, it.next)
	if err != nil {
		return nil, err
	}
	return decodePage[T](res, it.itemKey)
}

func decodePage[T any](res *Response, itemKey string) (*Page[T], error) {
	page := &Page[T]{}
	if len(res.Raw) == 0 {
		return page, nil
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(res.Raw, &envelope); err != nil {
		return nil, &ResponseParseError{Response: res, Err: err}
	}
	if raw, ok := envelope[itemKey]; ok {
		if err := json.Unmarshal(raw, &page.Items); err != nil {
			return nil, &ResponseParseError{Response: res, Err: err}
		}
	}
	if raw, ok := envelope["next_page"]; ok {
		if err := json.Unmarshal(raw, &page.NextPage); err != nil {
			return nil, &ResponseParseError{Response: res, Err: err}
		}
	}
	return page, nil
}

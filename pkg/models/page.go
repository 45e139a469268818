package models

import (
	"encoding/base64"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 100
)

// PageRequest is the {cursor, pageSize} pagination contract. An empty cursor
// starts from the newest record.
type PageRequest struct {
	Cursor   string `form:"cursor" json:"cursor"`
	PageSize int    `form:"page_size" json:"page_size"`
}

// Page is one slice of a newest-first sequence.
type Page[T any] struct {
	Page           []T    `json:"page"`
	IsDone         bool   `json:"is_done"`
	ContinueCursor string `json:"continue_cursor"`
}

// EmptyPage is returned to anonymous callers.
func EmptyPage[T any]() Page[T] {
	return Page[T]{Page: []T{}, IsDone: true}
}

// Size clamps the requested page size.
func (r PageRequest) Size(defaultSize int) int {
	if r.PageSize <= 0 {
		return defaultSize
	}
	if r.PageSize > MaxPageSize {
		return MaxPageSize
	}
	return r.PageSize
}

// After decodes the cursor into the id of the last record already returned.
// ok is false for an empty cursor.
func (r PageRequest) After() (id bson.ObjectID, ok bool, err error) {
	if r.Cursor == "" {
		return bson.ObjectID{}, false, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(r.Cursor)
	if err != nil {
		return bson.ObjectID{}, false, err
	}
	id, err = bson.ObjectIDFromHex(string(raw))
	if err != nil {
		return bson.ObjectID{}, false, err
	}
	return id, true, nil
}

// EncodeCursor turns a record id into an opaque continuation token.
func EncodeCursor(id bson.ObjectID) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id.Hex()))
}

// NewPage trims a result fetched with one extra record into a Page.
func NewPage[T any](items []T, size int, idOf func(T) bson.ObjectID) Page[T] {
	if items == nil {
		items = []T{}
	}
	if len(items) <= size {
		p := Page[T]{Page: items, IsDone: true}
		if len(items) > 0 {
			p.ContinueCursor = EncodeCursor(idOf(items[len(items)-1]))
		}
		return p
	}
	items = items[:size]
	return Page[T]{
		Page:           items,
		IsDone:         false,
		ContinueCursor: EncodeCursor(idOf(items[len(items)-1])),
	}
}

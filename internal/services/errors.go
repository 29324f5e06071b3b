// Package services defines the business logic for topics, users, articles
// and comments. This file centralizes the typed rejections service methods
// return so the HTTP layer can turn them into responses without string
// matching.
//
// A Rejection carries the status and message the client sees. Store-level
// failures (repo.StoreError) are not rejections; they are classified
// separately by the handler layer.
package services

import (
	"errors"
	"net/http"
)

// Kind tags a Rejection with its failure category.
type Kind int

const (
	// KindValidation marks a request the validator refused (400).
	KindValidation Kind = iota + 1
	// KindNotFound marks a lookup that matched nothing (404).
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Rejection is a domain-level refusal with a client-facing status and msg.
type Rejection struct {
	Kind   Kind
	Status int
	Msg    string
	Err    error
}

func (r *Rejection) Error() string {
	if r.Err != nil {
		return r.Msg + ": " + r.Err.Error()
	}
	return r.Msg
}

func (r *Rejection) Unwrap() error { return r.Err }

// Is matches rejections by kind and message so sentinels work with errors.Is
// even after Wrap attached a cause.
func (r *Rejection) Is(target error) bool {
	t, ok := target.(*Rejection)
	if !ok {
		return false
	}
	return r.Kind == t.Kind && r.Msg == t.Msg
}

// Wrap returns a copy of r carrying err as its cause.
func (r *Rejection) Wrap(err error) *Rejection {
	cp := *r
	cp.Err = err
	return &cp
}

// Client-facing messages.
const (
	MsgInvalidSortQuery      = "Invalid sort query"
	MsgInvalidOrderQuery     = "Invalid order query"
	MsgMissingRequiredFields = "Missing required fields"
	MsgInvalidDataType       = "Invalid data type"
)

var (
	// ErrInvalidSortQuery is returned for a sort_by outside the allow-list.
	ErrInvalidSortQuery = validation(MsgInvalidSortQuery)

	// ErrInvalidOrderQuery is returned for an order other than ASC/DESC.
	ErrInvalidOrderQuery = validation(MsgInvalidOrderQuery)

	// ErrMissingRequiredFields is returned when a payload lacks a required key.
	ErrMissingRequiredFields = validation(MsgMissingRequiredFields)

	// ErrInvalidDataType is returned for malformed JSON or wrongly typed fields.
	ErrInvalidDataType = validation(MsgInvalidDataType)

	// ErrArticleNotFound is returned when the referenced article does not
	// exist. Comment deletion misses reuse it.
	ErrArticleNotFound = NotFound("Article")
)

func validation(msg string) *Rejection {
	return &Rejection{Kind: KindValidation, Status: http.StatusBadRequest, Msg: msg}
}

// NotFound builds the 404 rejection for a missing entity, e.g. "Article not found".
func NotFound(entity string) *Rejection {
	return &Rejection{Kind: KindNotFound, Status: http.StatusNotFound, Msg: entity + " not found"}
}

// AsRejection extracts a *Rejection from err's chain.
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}

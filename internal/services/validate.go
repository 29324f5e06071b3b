// Package services – validation
//
// Allow-list checks applied before any statement reaches the store. Route ids
// are deliberately not checked here: the repo layer parses them and reports a
// malformed id as a store error, which the handler classifier maps to 400.
package services

import (
	"bytes"
	"encoding/json"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	defaultSortBy = "created_at"
	defaultOrder  = "DESC"
)

var sortableColumns = map[string]struct{}{
	"author":        {},
	"title":         {},
	"article_id":    {},
	"topic":         {},
	"created_at":    {},
	"votes":         {},
	"comment_count": {},
}

var upper = cases.Upper(language.Und)

// ValidateSort returns field when it is a sortable article column, the
// default created_at when it is empty, and ErrInvalidSortQuery otherwise.
// Matching is exact.
func ValidateSort(field string) (string, error) {
	if field == "" {
		return defaultSortBy, nil
	}
	if _, ok := sortableColumns[field]; !ok {
		return "", ErrInvalidSortQuery
	}
	return field, nil
}

// ValidateOrder upper-cases direction and accepts ASC or DESC. Empty means DESC.
func ValidateOrder(direction string) (string, error) {
	if direction == "" {
		return defaultOrder, nil
	}
	switch d := upper.String(direction); d {
	case "ASC", "DESC":
		return d, nil
	}
	return "", ErrInvalidOrderQuery
}

// ValidateRequiredFields reports ErrMissingRequiredFields unless every named
// key is present with a value other than null or "". Zero numbers count as
// present.
func ValidateRequiredFields(payload map[string]json.RawMessage, fields ...string) error {
	for _, f := range fields {
		raw, ok := payload[f]
		if !ok {
			return ErrMissingRequiredFields
		}
		v := bytes.TrimSpace(raw)
		if len(v) == 0 || bytes.Equal(v, []byte("null")) || bytes.Equal(v, []byte(`""`)) {
			return ErrMissingRequiredFields
		}
	}
	return nil
}

// DecodePayload parses a JSON object body. Anything that is not an object is
// ErrInvalidDataType; an empty body decodes to an empty payload so the
// required-field check reports it.
func DecodePayload(body []byte) (map[string]json.RawMessage, error) {
	payload := map[string]json.RawMessage{}
	if len(bytes.TrimSpace(body)) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, ErrInvalidDataType.Wrap(err)
	}
	if payload == nil {
		// literal null
		payload = map[string]json.RawMessage{}
	}
	return payload, nil
}

// NewComment is the validated body of a comment post.
type NewComment struct {
	Username string
	Body     string
}

// ParseNewComment validates a comment post body: both username and body are
// required strings.
func ParseNewComment(body []byte) (NewComment, error) {
	payload, err := DecodePayload(body)
	if err != nil {
		return NewComment{}, err
	}
	if err := ValidateRequiredFields(payload, "username", "body"); err != nil {
		return NewComment{}, err
	}
	var in NewComment
	if err := decodeField(payload["username"], &in.Username); err != nil {
		return NewComment{}, err
	}
	if err := decodeField(payload["body"], &in.Body); err != nil {
		return NewComment{}, err
	}
	return in, nil
}

// ParseVotePatch validates a vote patch body and returns inc_votes. The
// increment must fit a 32-bit integer, the width of the votes column.
func ParseVotePatch(body []byte) (int, error) {
	payload, err := DecodePayload(body)
	if err != nil {
		return 0, err
	}
	if err := ValidateRequiredFields(payload, "inc_votes"); err != nil {
		return 0, err
	}
	var inc int32
	if err := decodeField(payload["inc_votes"], &inc); err != nil {
		return 0, err
	}
	return int(inc), nil
}

func decodeField(raw json.RawMessage, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return ErrInvalidDataType.Wrap(err)
	}
	return nil
}

package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tbourn/go-news-backend/internal/repo"
	"github.com/tbourn/go-news-backend/internal/services"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		msg    string
		stage  string
	}{
		{"invalid id", &repo.StoreError{Code: repo.CodeInvalidTextRepresentation}, http.StatusBadRequest, "Invalid Id type", "store"},
		{"fk violation wrapped", fmt.Errorf("insert: %w", &repo.StoreError{Code: repo.CodeForeignKeyViolation, Err: &pgconn.PgError{Code: "23503"}}), http.StatusBadRequest, "Invalid data type", "store"},
		{"vote tally out of range", &repo.StoreError{Code: repo.CodeNumericOutOfRange}, http.StatusBadRequest, "Invalid data type", "store"},
		{"sort rejection", services.ErrInvalidSortQuery, http.StatusBadRequest, "Invalid sort query", "rejection"},
		{"order rejection", services.ErrInvalidOrderQuery, http.StatusBadRequest, "Invalid order query", "rejection"},
		{"missing fields", services.ErrMissingRequiredFields, http.StatusBadRequest, "Missing required fields", "rejection"},
		{"malformed body", services.ErrInvalidDataType.Wrap(errors.New("eof")), http.StatusBadRequest, "Invalid data type", "rejection"},
		{"not found", services.ErrArticleNotFound, http.StatusNotFound, "Article not found", "rejection"},
		{"custom rejection", &services.Rejection{Kind: services.KindNotFound, Status: 404, Msg: "Topic not found"}, 404, "Topic not found", "rejection"},
		{"unique violation falls through", &repo.StoreError{Code: repo.CodeUniqueViolation}, http.StatusInternalServerError, "Internal Server Error", "fallback"},
		{"raw pg error falls through", &pgconn.PgError{Code: "57014"}, http.StatusInternalServerError, "Internal Server Error", "fallback"},
		{"plain", errors.New("boom"), http.StatusInternalServerError, "Internal Server Error", "fallback"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.err)
			if got.Status != tc.status || got.Msg != tc.msg || got.Stage != tc.stage {
				t.Fatalf("Classify(%v) = %+v; want %d %q %s", tc.err, got, tc.status, tc.msg, tc.stage)
			}
		})
	}
}

func TestClassify_StoreCodeBeatsRejection(t *testing.T) {
	// A rejection wrapping a store error still resolves at the store stage.
	err := services.ErrInvalidDataType.Wrap(&repo.StoreError{Code: repo.CodeInvalidTextRepresentation})
	if got := Classify(err); got.Msg != "Invalid Id type" || got.Stage != "store" {
		t.Fatalf("stage order not honoured: %+v", got)
	}
}

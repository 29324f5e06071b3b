package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-news-backend/internal/http/middleware"
	"github.com/tbourn/go-news-backend/internal/repo"
	"github.com/tbourn/go-news-backend/internal/services"
)

// Outcome is the client-facing result of classifying an error.
type Outcome struct {
	Status int
	Msg    string
	Stage  string
}

// stage inspects err and either answers or passes (ok == false).
type stage func(err error) (Outcome, bool)

// stages run in order; the first answer wins.
var stages = []stage{
	storeCodeStage,
	rejectionStage,
}

func storeCodeStage(err error) (Outcome, bool) {
	switch {
	case repo.HasCode(err, repo.CodeInvalidTextRepresentation):
		return Outcome{http.StatusBadRequest, MsgInvalidIDType, "store"}, true
	case repo.HasCode(err, repo.CodeForeignKeyViolation),
		repo.HasCode(err, repo.CodeNumericOutOfRange):
		return Outcome{http.StatusBadRequest, MsgInvalidDataType, "store"}, true
	}
	return Outcome{}, false
}

func rejectionStage(err error) (Outcome, bool) {
	if r, ok := services.AsRejection(err); ok {
		return Outcome{r.Status, r.Msg, "rejection"}, true
	}
	return Outcome{}, false
}

// Classify maps err to exactly one outcome, falling back to 500.
func Classify(err error) Outcome {
	for _, s := range stages {
		if out, ok := s(err); ok {
			return out
		}
	}
	return Outcome{http.StatusInternalServerError, MsgInternal, "fallback"}
}

// respondError classifies err, records it and writes the envelope.
func respondError(c *gin.Context, err error) {
	out := Classify(err)
	middleware.ObserveAPIError(out.Stage, out.Status)
	fail(c, out.Status, out.Msg, err)
}

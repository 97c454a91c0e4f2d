// README: Base handler utilities (JSON helpers, engine error mapping).
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"saguaro/internal/modules/scheduling"
)

// Suggester is the slice of the engine the handlers need; tests substitute
// a stub.
type Suggester interface {
	Suggest(ctx context.Context, req scheduling.NewRequest, existing []scheduling.ExistingAppointment) ([]scheduling.Suggestion, error)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, errorResponse{Error: msg})
}

// writeEngineError maps the engine's input sentinels to 422; anything else
// is an internal error.
func writeEngineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, scheduling.ErrUngeocodable), errors.Is(err, scheduling.ErrNoAvailability):
		writeError(c, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

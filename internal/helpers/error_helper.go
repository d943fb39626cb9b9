package helpers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// DenialResponse carries a stable reason code so clients and tests can
// distinguish a missing credential from a bad one without parsing messages.
type DenialResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Reason  string `json:"reason"`
}

const (
	ReasonNoToken        = "no-token"
	ReasonBadToken       = "bad-token"
	ReasonForbiddenRole  = "forbidden-role"
	ReasonForbiddenOwner = "forbidden-owner"
)

func RespondWithError(c *gin.Context, statusCode int, customMessage string) {
	c.JSON(statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: customMessage,
	})
}

func AbortWithDenial(c *gin.Context, statusCode int, customMessage string, reason string) {
	c.AbortWithStatusJSON(statusCode, DenialResponse{
		Error:   http.StatusText(statusCode),
		Message: customMessage,
		Reason:  reason,
	})
}

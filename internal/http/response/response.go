package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tasbeha/deaconschool-backend/internal/domain"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondDomainError maps engine error codes to HTTP statuses. Unknown
// errors read as internal.
func RespondDomainError(c *gin.Context, err error) {
	code := domain.CodeOf(err)
	RespondError(c, statusFor(code), string(code), err)
}

func statusFor(code domain.ErrorCode) int {
	switch code {
	case domain.CodeValidation:
		return http.StatusBadRequest
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeInvalidState, domain.CodeConflict:
		return http.StatusConflict
	case domain.CodeInsufficientBalance:
		return http.StatusUnprocessableEntity
	case domain.CodeNodeLocked:
		return http.StatusForbidden
	case domain.CodeRetryable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

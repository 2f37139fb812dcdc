package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/examsync-backend/internal/platform/apierr"
	"github.com/yungbote/examsync-backend/internal/platform/ctxutil"
)

type APIError struct {
	Message   string `json:"message"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
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
			Message:   msg,
			Code:      code,
			RequestID: ctxutil.RequestID(c.Request.Context()),
		},
	})
}

// RespondAPIError maps err to the status and code it carries. Internal errors never leak
// their message.
func RespondAPIError(c *gin.Context, err error) {
	status, code := apierr.From(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		RespondError(c, status, code, errorMessage(code))
		return
	}
	RespondError(c, status, code, err)
}

type errorMessage string

func (e errorMessage) Error() string { return string(e) }

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

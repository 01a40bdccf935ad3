package response

import (
	"time"

	"github.com/gin-gonic/gin"

	domainerrors "github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/domain/errors"
)

// Envelope is the uniform response shape shared by the REST surface and the
// tool transport: {success:true, data} or {success:false, error, code}.
type Envelope struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Code      string      `json:"code,omitempty"`
	Timestamp string      `json:"timestamp,omitempty"`
}

// Success sends a success envelope
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Envelope{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Error sends an error envelope. The HTTP status and the stable code both
// come from the mapped AppError; raw internal detail never reaches the body.
func Error(c *gin.Context, err error) {
	appErr := domainerrors.From(err)
	c.JSON(appErr.Status, Envelope{
		Success: false,
		Error:   appErr.Message,
		Code:    appErr.Code,
	})
}

// AbortError sends an error envelope and stops the handler chain.
func AbortError(c *gin.Context, err error) {
	appErr := domainerrors.From(err)
	c.AbortWithStatusJSON(appErr.Status, Envelope{
		Success: false,
		Error:   appErr.Message,
		Code:    appErr.Code,
	})
}

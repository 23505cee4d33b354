package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"khata/internal/core/apperror"
	appctx "khata/internal/core/context"
)

// FirmHeader is the HTTP header carrying the acting firm.
const FirmHeader = "X-Firm-ID"

// Firm middleware resolves the acting firm from the X-Firm-ID header and
// injects it into the request context. Every business route is scoped to
// one firm; requests without a firm are rejected before any handler runs.
func Firm() gin.HandlerFunc {
	return func(c *gin.Context) {
		rawFirmID := c.GetHeader(FirmHeader)
		if rawFirmID == "" {
			_ = c.Error(
				apperror.NewValidation("firm is required").
					WithDetail("header", FirmHeader),
			)
			c.Abort()
			return
		}

		firmID, err := uuid.Parse(rawFirmID)
		if err != nil {
			_ = c.Error(
				apperror.NewValidation("invalid firm id").
					WithDetail("header", FirmHeader).
					WithDetail("value", rawFirmID),
			)
			c.Abort()
			return
		}

		ctx := appctx.WithFirm(c.Request.Context(), firmID)
		c.Request = c.Request.WithContext(ctx)
		c.Set("firm_id", firmID.String())

		c.Next()
	}
}

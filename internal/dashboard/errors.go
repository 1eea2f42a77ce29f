package dashboard

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"guildhub/internal/apperr"
)

// forwardable lists the upstream codes whose cause comes from the Discord
// REST API and may be shown to the caller. Store and internal causes are
// logged only.
var forwardable = map[string]bool{
	apperr.CodePublishFailed:        true,
	apperr.CodeIdentityLookupFailed: true,
	apperr.CodeDirectoryFailed:      true,
}

func (s *Server) fail(c *gin.Context, err error) {
	appErr := apperr.As(err)
	body := gin.H{"error": appErr.Message, "code": appErr.Code}
	if appErr.Field != "" {
		body["field"] = appErr.Field
	}
	if appErr.Kind == apperr.KindUnauthenticated {
		s.dropSession(c)
	}
	status := appErr.Status()
	if status >= 500 {
		s.logger.Error("request failed",
			zap.String("route", c.FullPath()),
			zap.String("code", appErr.Code),
			zap.Error(err),
		)
		if forwardable[appErr.Code] && appErr.Err != nil {
			body["detail"] = appErr.Err.Error()
		}
	}
	c.AbortWithStatusJSON(status, body)
}

func badBody(err error) error {
	return apperr.Validation(apperr.CodeInvalidField, "body", "request body is not valid JSON: "+err.Error())
}

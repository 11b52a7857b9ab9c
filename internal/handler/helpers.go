package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/pdflux/internal/pkg/errcode"
	appErr "github.com/xxxsen/pdflux/internal/pkg/errors"
	"github.com/xxxsen/pdflux/internal/pkg/response"
)

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	switch {
	case errors.Is(err, appErr.ErrNotFound):
		response.Error(c, errcode.ErrNotFound, "document not found")
	case errors.Is(err, appErr.ErrNoContent):
		response.Error(c, errcode.ErrNoContent, "no text content available for this document")
	case errors.Is(err, appErr.ErrProvider):
		response.Error(c, errcode.ErrProvider, "ai service error")
	case errors.Is(err, appErr.ErrInvalid):
		response.Error(c, errcode.ErrInvalid, "invalid request")
	default:
		response.Error(c, errcode.ErrInternal, "internal error")
	}
}

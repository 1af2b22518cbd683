package server

import (
	"math"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/glazier/internal/auditcontext"
	obscontext "github.com/smallbiznis/glazier/internal/observability/context"
	obslogger "github.com/smallbiznis/glazier/internal/observability/logger"
	"github.com/smallbiznis/glazier/internal/orgcontext"
	"go.uber.org/zap"
)

const (
	HeaderOrg   = "X-Org-Id"
	HeaderActor = "X-Actor"
)

// OrgContext resolves the organization every /api request is scoped to. The
// header wins; single-tenant installs fall back to the configured default.
func (s *Server) OrgContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderOrg))

		var (
			orgID snowflake.ID
			ok    bool
		)
		if raw != "" {
			orgID, ok = orgcontext.Parse(raw)
		} else if s.cfg.DefaultOrgID > 0 {
			orgID, ok = snowflake.ID(s.cfg.DefaultOrgID), true
		}
		if !ok {
			AbortWithError(c, newValidationError("organization", "invalid_organization", "missing or invalid "+HeaderOrg+" header"))
			return
		}

		ctx := orgcontext.WithOrgID(c.Request.Context(), orgID)
		ctx = obscontext.WithOrgID(ctx, orgID.String())
		if actor := strings.TrimSpace(c.GetHeader(HeaderActor)); actor != "" {
			ctx = auditcontext.WithActor(ctx, "user", actor)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// PreviewRateLimit throttles the live pricing preview per organization. When
// the limiter cannot be reached the request is let through.
func (s *Server) PreviewRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.previewLimiter.Enabled() {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		orgID, _ := orgcontext.OrgIDFromContext(ctx)
		res, err := s.previewLimiter.Allow(ctx, orgID.String())
		if err != nil {
			obslogger.FromContext(ctx).Warn("pricing preview rate limit check failed", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		if !res.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
			AbortWithError(c, ErrRateLimited)
			return
		}
		c.Next()
	}
}

package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pscheid92/ticketdash/internal/domain"
	"github.com/pscheid92/ticketdash/internal/platform/correlation"
	apperrors "github.com/pscheid92/ticketdash/internal/platform/errors"
)

const maxPermissionsBody = 64 << 10

func (s *Server) registerPermissionRoutes() {
	g := s.echo.Group("/api/permissions", s.requireAuthorized)
	g.GET("", s.handleListPermissions)
	g.PUT("", s.handleUpdatePermissions)
}

// requireAuthorized answers 401 without a readable session and 403 when
// the resolver rejects it.
func (s *Server) requireAuthorized(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess := s.decodeSession(c)
		if sess == nil {
			return apperrors.UnauthenticatedError("not signed in")
		}

		ctx := correlation.WithUserID(c.Request().Context(), sess.UserID())
		c.SetRequest(c.Request().WithContext(ctx))

		if !s.authorizer.IsAuthorized(ctx, sess) {
			return apperrors.ForbiddenError("unauthorized").WithField("user_id", sess.UserID())
		}
		return next(c)
	}
}

func (s *Server) handleListPermissions(c echo.Context) error {
	all, err := s.permissions.All(c.Request().Context())
	if err != nil {
		return apperrors.InternalError("failed to list permissions", err)
	}

	if err := c.JSON(http.StatusOK, map[string]any{"permissions": all}); err != nil {
		return fmt.Errorf("failed to write permissions response: %w", err)
	}
	return nil
}

type updatePermissionsRequest struct {
	UserID      string          `json:"userId"`
	Permissions json.RawMessage `json:"permissions"`
}

// handleUpdatePermissions deletes the entry for "permissions": null and
// otherwise shallow-merges the given keys into it. Concurrent updates of
// the same user are last-writer-wins.
func (s *Server) handleUpdatePermissions(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxPermissionsBody))
	if err != nil {
		return apperrors.ValidationError("failed to read request body")
	}

	var req updatePermissionsRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return apperrors.ValidationError("invalid JSON body")
	}
	if req.UserID == "" {
		return apperrors.ValidationError("userId is required")
	}

	if bytes.Equal(bytes.TrimSpace(req.Permissions), []byte("null")) {
		if err := s.permissions.Delete(ctx, req.UserID); err != nil {
			return apperrors.InternalError("failed to delete permissions", err).WithField("target_user_id", req.UserID)
		}
		slog.InfoContext(ctx, "Permissions removed", "target_user_id", req.UserID)
		return s.respondPermissions(c)
	}

	var update domain.PermissionSet
	if len(req.Permissions) > 0 {
		if err := json.Unmarshal(req.Permissions, &update); err != nil {
			return apperrors.ValidationError("permissions must be an object or null")
		}
	}

	current, _, err := s.permissions.Get(ctx, req.UserID)
	if err != nil {
		return apperrors.InternalError("failed to load permissions", err).WithField("target_user_id", req.UserID)
	}
	if err := s.permissions.Set(ctx, req.UserID, current.Merge(update)); err != nil {
		return apperrors.InternalError("failed to save permissions", err).WithField("target_user_id", req.UserID)
	}

	slog.InfoContext(ctx, "Permissions updated", "target_user_id", req.UserID, "keys", len(update))
	return s.respondPermissions(c)
}

func (s *Server) respondPermissions(c echo.Context) error {
	all, err := s.permissions.All(c.Request().Context())
	if err != nil {
		return apperrors.InternalError("failed to list permissions", err)
	}

	if err := c.JSON(http.StatusOK, map[string]any{"success": true, "permissions": all}); err != nil {
		return fmt.Errorf("failed to write permissions response: %w", err)
	}
	return nil
}

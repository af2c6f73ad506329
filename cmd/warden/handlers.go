package main

import (
	"errors"
	"net/http"

	"github.com/fwber/warden/geospoof"

	"github.com/labstack/echo/v4"
)

func (s *Server) handleHealthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type moderationEvaluateRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleModerationEvaluate(c echo.Context) error {
	var req moderationEvaluateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text is required")
	}

	decision, err := s.moderator.Evaluate(c.Request().Context(), req.Text)
	if err != nil {
		s.logger.Error("moderation evaluation failed", "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "evaluation failed")
	}
	moderationRequests.Inc()
	return c.JSON(http.StatusOK, decision)
}

type geoSpoofEvaluateRequest struct {
	UserID    string                `json:"userId"`
	NewFix    geospoof.LocationFix  `json:"newFix"`
	PrevFix   *geospoof.LocationFix `json:"prevFix,omitempty"`
	IPAddress string                `json:"ipAddress,omitempty"`
}

func (s *Server) handleGeoSpoofEvaluate(c echo.Context) error {
	var req geoSpoofEvaluateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.UserID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "userId is required")
	}

	finding, err := s.detector.Check(c.Request().Context(), req.UserID, req.NewFix, req.PrevFix, req.IPAddress)
	if err != nil {
		if errors.Is(err, geospoof.ErrInvalidFix) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		s.logger.Error("geo-spoof evaluation failed", "err", err, "user", req.UserID)
		return echo.NewHTTPError(http.StatusInternalServerError, "evaluation failed")
	}
	geoSpoofRequests.Inc()
	return c.JSON(http.StatusOK, finding)
}

// handlePrune drops expired period state. Called by an external scheduler;
// the daemon runs no timers of its own.
func (s *Server) handlePrune(c echo.Context) error {
	if err := s.detector.Prune(c.Request().Context()); err != nil {
		s.logger.Error("prune failed", "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "prune failed")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/polymath-ai/polymath/internal/expert"
	"github.com/polymath-ai/polymath/internal/profile"
)

func (s *Server) getProfile(c echo.Context) error {
	userID := c.Param("id")
	p, err := s.profiles.Get(c.Request().Context(), userID)
	if errors.Is(err, profile.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "profile not found")
	}
	if err != nil {
		s.logger.Printf("fetching profile %s failed: %v", userID, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "unable to load profile")
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) putProfile(c echo.Context) error {
	userID := c.Param("id")

	var p profile.Profile
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid profile body")
	}
	for _, domain := range p.ActiveAgents {
		if !expert.Known(domain) {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown agent domain: "+domain)
		}
	}

	if err := s.profiles.Put(c.Request().Context(), userID, p); err != nil {
		s.logger.Printf("storing profile %s failed: %v", userID, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "unable to store profile")
	}
	return c.JSON(http.StatusOK, p)
}

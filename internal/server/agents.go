package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/polymath-ai/polymath/internal/expert"
)

type agentInfo struct {
	Key             string   `json:"key"`
	Title           string   `json:"title"`
	Expertise       []string `json:"expertise"`
	Specializations []string `json:"specializations"`
	Description     string   `json:"description"`
	Active          bool     `json:"active"`
}

// listAgents returns the expert catalog.
func (s *Server) listAgents(c echo.Context) error {
	all := expert.All()
	agents := make([]agentInfo, 0, len(all))
	for _, d := range all {
		agents = append(agents, agentInfo{
			Key:             d.Key,
			Title:           d.Title,
			Expertise:       d.Expertise,
			Specializations: d.Specializations,
			Description:     d.Description,
			Active:          true,
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"agents": agents})
}

// README: Known-location catalog read endpoint.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"concierge/internal/modules/location"
)

type LocationHandler struct {
	locations *location.Service
}

func NewLocationHandler(locations *location.Service) *LocationHandler {
	return &LocationHandler{locations: locations}
}

type placeView struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
	Area    string   `json:"area"`
}

// List handles GET /api/locations.
func (h *LocationHandler) List(c *gin.Context) {
	places, err := h.locations.List(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	views := make([]placeView, len(places))
	for i, p := range places {
		views[i] = placeView{
			ID:      string(p.ID),
			Name:    p.Name,
			Aliases: p.Aliases,
			Area:    p.Area,
		}
	}
	writeJSON(c, http.StatusOK, map[string]any{"locations": views})
}

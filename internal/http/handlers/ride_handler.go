// README: Ride request read/cancel endpoints.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"concierge/internal/modules/ride"
	"concierge/internal/types"
)

type RideHandler struct {
	rides *ride.Service
}

func NewRideHandler(rides *ride.Service) *RideHandler {
	return &RideHandler{rides: rides}
}

type rideView struct {
	ID          string `json:"id"`
	SessionID   string `json:"session_id"`
	RoomNumber  string `json:"room_number,omitempty"`
	GuestName   string `json:"guest_name,omitempty"`
	Pickup      string `json:"pickup"`
	Destination string `json:"destination"`
	GuestCount  int    `json:"guest_count"`
	Notes       string `json:"notes,omitempty"`
	Status      string `json:"status"`
}

// Get handles GET /api/rides/:id.
func (h *RideHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid ride id")
		return
	}
	r, err := h.rides.Get(c.Request.Context(), types.ID(id))
	if err != nil {
		writeRideError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, rideView{
		ID:          string(r.ID),
		SessionID:   string(r.SessionID),
		RoomNumber:  r.RoomNumber,
		GuestName:   r.GuestName,
		Pickup:      r.Pickup,
		Destination: r.Destination,
		GuestCount:  r.GuestCount,
		Notes:       r.Notes,
		Status:      string(r.Status),
	})
}

type cancelReq struct {
	Reason string `json:"reason"`
}

// Cancel handles POST /api/rides/:id/cancel.
func (h *RideHandler) Cancel(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid ride id")
		return
	}
	var req cancelReq
	_ = c.ShouldBindJSON(&req) // body is optional

	err := h.rides.Cancel(c.Request.Context(), ride.CancelCommand{
		RideID:    types.ID(id),
		ActorType: "guest",
		Reason:    req.Reason,
	})
	if err != nil {
		writeRideError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"status": string(ride.StatusCancelled)})
}

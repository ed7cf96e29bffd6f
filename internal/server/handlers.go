package server

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zulandar/gatedesk/internal/queue"
)

// createRequest is the body for POST /api/appointments. Field presence is
// checked by the engine; phone and plate format checks stay with the client.
type createRequest struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	LicensePlate string `json:"licensePlate"`
	IsOutbound   bool   `json:"isOutbound"`
}

func handleCreate(eng *queue.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		appt, err := eng.Create(req.Name, req.Phone, req.LicensePlate, req.IsOutbound)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "appointment": appt})
	}
}

func handleOutbound(eng *queue.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		appt, err := eng.MarkOutbound(c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "appointment": appt})
	}
}

func handleList(eng *queue.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		display := eng.ComputeDisplay()
		c.JSON(http.StatusOK, gin.H{
			"appointments":   eng.ListWaiting(),
			"currentDisplay": display.Appointments,
			"systemActive":   display.SystemActive,
			"totalWaiting":   display.TotalWaiting,
		})
	}
}

func handleStatus(eng *queue.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		display := eng.ComputeDisplay()
		c.JSON(http.StatusOK, gin.H{
			"systemActive":   display.SystemActive,
			"currentTime":    eng.Now().Format(time.RFC3339),
			"totalWaiting":   display.TotalWaiting,
			"currentDisplay": display.Appointments,
		})
	}
}

func handleHistory(eng *queue.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, eng.History())
	}
}

func handleHealth(eng *queue.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": eng.Now().Format(time.RFC3339),
		})
	}
}

// writeError maps engine errors to HTTP statuses: validation failures to
// 400, unknown IDs to 404, everything else (storage write failures) to 500.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, queue.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, queue.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log.Printf("server: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

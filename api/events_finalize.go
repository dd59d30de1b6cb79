package api

import (
	"io"
	"net/http"

	"bitwise74/vidshare/events"

	"github.com/gin-gonic/gin"
)

// EventsFinalize is the webhook form of the object store finalize event, for
// setups that push bucket notifications over HTTP instead of a queue. The
// payload is the same S3 notification JSON the queue consumer reads.
func (a *API) EventsFinalize(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Failed to read request body",
			"requestID": requestID,
		})
		return
	}

	evs, err := events.ParseNotification(body)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid notification payload",
			"requestID": requestID,
		})
		return
	}

	for _, ev := range evs {
		if err := a.Reactor.HandleFinalize(c.Request.Context(), ev); err != nil {
			// Transient store failure, the sender's retry is the recovery path
			writeError(c, requestID, err)
			return
		}
	}

	c.Status(http.StatusNoContent)
}

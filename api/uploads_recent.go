package api

import (
	"net/http"
	"slices"
	"strconv"

	"bitwise74/vidshare/validators"

	"github.com/gin-gonic/gin"
)

var validLimits = []int{10, 20, 50, 100}

func (a *API) UploadsRecent(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	recipient := c.Query("recipient")
	if err := validators.EmailValidator(recipient); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid recipient provided",
			"requestID": requestID,
		})
		return
	}

	limitStr := c.DefaultQuery("limit", "20")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || !slices.Contains(validLimits, limit) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid limit provided",
			"requestID": requestID,
		})
		return
	}

	recs, err := a.Store.QueryByRecipient(c.Request.Context(), recipient, int32(limit))
	if err != nil {
		writeError(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, recs)
}

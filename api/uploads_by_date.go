package api

import (
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

func (a *API) UploadsByDate(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	date := c.DefaultQuery("date", time.Now().UTC().Format(time.DateOnly))
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid date provided, expected yyyy-mm-dd",
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

	recs, err := a.Store.QueryByDate(c.Request.Context(), date, int32(limit))
	if err != nil {
		writeError(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, recs)
}

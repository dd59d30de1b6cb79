package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (a *API) DownloadFile(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	fileID := c.Param("fileID")
	if fileID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "No file ID provided",
			"requestID": requestID,
		})
		return
	}

	cred, err := a.Download.Do(c.Request.Context(), fileID)
	if err != nil {
		writeError(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":        cred.URL,
		"expires_at": cred.ExpiresAt,
	})
}

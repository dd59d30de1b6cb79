package api

import (
	"net/http"

	"bitwise74/vidshare/service"

	"github.com/gin-gonic/gin"
)

func (a *API) UploadInitiate(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var req service.IntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	res, err := a.Intake.Do(c.Request.Context(), &req)
	if err != nil {
		writeError(c, requestID, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

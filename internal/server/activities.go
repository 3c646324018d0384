package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	activitydomain "github.com/smallbiznis/streakline/internal/activity/domain"
)

func (s *Server) ListActivities(c *gin.Context) {
	var req activitydomain.ListActivitiesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.UserID = userIDFromContext(c)

	res, err := s.activitySvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

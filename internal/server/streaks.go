package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	streakdomain "github.com/smallbiznis/streakline/internal/streak/domain"
)

const contextStreakOutcomeKey = "streak_outcome"

type timezoneRequest struct {
	Timezone string `json:"timezone"`
}

func (s *Server) RecordActivity(c *gin.Context) {
	var req streakdomain.RecordActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.UserID = userIDFromContext(c)
	req.Timezone = requestTimezone(c, req.Timezone)

	res, err := s.streakSvc.RecordActivity(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Set(contextStreakOutcomeKey, string(res.Outcome))

	c.JSON(http.StatusOK, res)
}

func (s *Server) RecordQuizSubmission(c *gin.Context) {
	var req streakdomain.QuizSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.UserID = userIDFromContext(c)
	req.Timezone = requestTimezone(c, req.Timezone)

	res, err := s.streakSvc.RecordQuizSubmission(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if res.Overall != nil {
		c.Set(contextStreakOutcomeKey, string(res.Overall.Outcome))
	}

	c.JSON(http.StatusOK, res)
}

func (s *Server) GetStreakStatus(c *gin.Context) {
	status, err := s.streakSvc.GetStreakStatus(c.Request.Context(), userIDFromContext(c), requestTimezone(c, ""))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

func (s *Server) ListStreaks(c *gin.Context) {
	streaks, err := s.streakSvc.ListStreaks(c.Request.Context(), userIDFromContext(c), requestTimezone(c, ""))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"streaks": streaks})
}

func (s *Server) UseFreeze(c *gin.Context) {
	var req timezoneRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	res, err := s.streakSvc.UseFreeze(c.Request.Context(), userIDFromContext(c), requestTimezone(c, req.Timezone))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if res.Success {
		c.Set(contextStreakOutcomeKey, string(streakdomain.OutcomeFreezeUsed))
	}

	c.JSON(http.StatusOK, res)
}

func (s *Server) UpdateTimezone(c *gin.Context) {
	var req timezoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	res, err := s.streakSvc.UpdateTimezone(c.Request.Context(), userIDFromContext(c), req.Timezone)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

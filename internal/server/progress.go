package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	coursedomain "github.com/orbitaagency1ia/miautoescuela/internal/course/domain"
)

// CompleteLesson marks the lesson done for the caller. Repeating the call is
// harmless: the response simply reports zero points awarded.
func (s *Server) CompleteLesson(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	schoolID, ok := currentSchoolID(c)
	if !ok {
		AbortWithError(c, ErrForbidden)
		return
	}

	lessonID, err := snowflake.ParseString(c.Param("lessonID"))
	if err != nil || lessonID == 0 {
		AbortWithError(c, coursedomain.ErrLessonNotFound)
		return
	}

	result, err := s.courseSvc.CompleteLesson(c.Request.Context(), schoolID, lessonID, userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"first_completion": result.First,
		"points_awarded":   result.PointsAwarded,
	})
}

func (s *Server) ListProgress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	schoolID, ok := currentSchoolID(c)
	if !ok {
		AbortWithError(c, ErrForbidden)
		return
	}

	progress, err := s.courseSvc.ListProgress(c.Request.Context(), schoolID, userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	profile, err := s.profileSvc.Get(c.Request.Context(), userID)
	points := 0
	if err == nil && profile != nil {
		points = profile.ActivityPoints
	}

	c.JSON(http.StatusOK, gin.H{
		"progress":        progress,
		"activity_points": points,
	})
}

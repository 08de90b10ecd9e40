package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	coursedomain "github.com/orbitaagency1ia/miautoescuela/internal/course/domain"
)

type moduleRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Position    int    `json:"position"`
}

type lessonRequest struct {
	ModuleID        string `json:"module_id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	VideoURL        string `json:"video_url"`
	DurationSeconds int    `json:"duration_seconds"`
	Position        int    `json:"position"`
	Points          int    `json:"points"`
}

func (s *Server) ListModules(c *gin.Context) {
	schoolID, ok := currentSchoolID(c)
	if !ok {
		AbortWithError(c, ErrForbidden)
		return
	}

	modules, err := s.courseSvc.ListModules(c.Request.Context(), schoolID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"modules": modules})
}

func (s *Server) CreateModule(c *gin.Context) {
	schoolID, ok := currentSchoolID(c)
	if !ok {
		AbortWithError(c, ErrForbidden)
		return
	}

	var req moduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	module, err := s.courseSvc.CreateModule(c.Request.Context(), schoolID, coursedomain.ModuleRequest{
		Title:       req.Title,
		Description: req.Description,
		Position:    req.Position,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, module)
}

func (s *Server) UpdateModule(c *gin.Context) {
	schoolID, ok := currentSchoolID(c)
	if !ok {
		AbortWithError(c, ErrForbidden)
		return
	}

	moduleID, err := snowflake.ParseString(c.Param("moduleID"))
	if err != nil || moduleID == 0 {
		AbortWithError(c, coursedomain.ErrModuleNotFound)
		return
	}

	var req moduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	module, err := s.courseSvc.UpdateModule(c.Request.Context(), schoolID, moduleID, coursedomain.ModuleRequest{
		Title:       req.Title,
		Description: req.Description,
		Position:    req.Position,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, module)
}

func (s *Server) DeleteModule(c *gin.Context) {
	schoolID, ok := currentSchoolID(c)
	if !ok {
		AbortWithError(c, ErrForbidden)
		return
	}

	moduleID, err := snowflake.ParseString(c.Param("moduleID"))
	if err != nil || moduleID == 0 {
		AbortWithError(c, coursedomain.ErrModuleNotFound)
		return
	}

	if err := s.courseSvc.DeleteModule(c.Request.Context(), schoolID, moduleID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) ListLessons(c *gin.Context) {
	schoolID, ok := currentSchoolID(c)
	if !ok {
		AbortWithError(c, ErrForbidden)
		return
	}

	moduleID, err := snowflake.ParseString(c.Param("moduleID"))
	if err != nil || moduleID == 0 {
		AbortWithError(c, coursedomain.ErrModuleNotFound)
		return
	}

	lessons, err := s.courseSvc.ListLessons(c.Request.Context(), schoolID, moduleID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lessons": lessons})
}

func (s *Server) CreateLesson(c *gin.Context) {
	schoolID, ok := currentSchoolID(c)
	if !ok {
		AbortWithError(c, ErrForbidden)
		return
	}

	var req lessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	moduleID, err := snowflake.ParseString(req.ModuleID)
	if err != nil || moduleID == 0 {
		AbortWithError(c, coursedomain.ErrInvalidLesson)
		return
	}

	lesson, err := s.courseSvc.CreateLesson(c.Request.Context(), schoolID, coursedomain.LessonRequest{
		ModuleID:        moduleID,
		Title:           req.Title,
		Description:     req.Description,
		VideoURL:        req.VideoURL,
		DurationSeconds: req.DurationSeconds,
		Position:        req.Position,
		Points:          req.Points,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, lesson)
}

func (s *Server) GetLesson(c *gin.Context) {
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

	lesson, err := s.courseSvc.GetLesson(c.Request.Context(), schoolID, lessonID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, lesson)
}

func (s *Server) UpdateLesson(c *gin.Context) {
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

	var req lessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	lesson, err := s.courseSvc.UpdateLesson(c.Request.Context(), schoolID, lessonID, coursedomain.LessonRequest{
		Title:           req.Title,
		Description:     req.Description,
		VideoURL:        req.VideoURL,
		DurationSeconds: req.DurationSeconds,
		Position:        req.Position,
		Points:          req.Points,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, lesson)
}

func (s *Server) DeleteLesson(c *gin.Context) {
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

	if err := s.courseSvc.DeleteLesson(c.Request.Context(), schoolID, lessonID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	schooldomain "github.com/orbitaagency1ia/miautoescuela/internal/school/domain"
)

type setMemberStatusRequest struct {
	Status string `json:"status"`
}

func schoolResponse(sch *schooldomain.School) schooldomain.SchoolResponse {
	return schooldomain.SchoolResponse{
		ID:                 sch.ID.String(),
		Name:               sch.Name,
		Slug:               sch.Slug,
		SubscriptionStatus: sch.SubscriptionStatus,
		TrialEndsAt:        sch.TrialEndsAt,
	}
}

func (s *Server) ListMySchools(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	schools, err := s.schoolsvc.ListByUser(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schools": schools})
}

// GetSchool returns the school together with the current gate decision so
// the frontend can render the paywall state without a second request.
func (s *Server) GetSchool(c *gin.Context) {
	schoolID, ok := currentSchoolID(c)
	if !ok {
		AbortWithError(c, ErrForbidden)
		return
	}

	sch, err := s.schoolsvc.GetByID(c.Request.Context(), schoolID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	decision, err := s.subscriptionSvc.Check(c.Request.Context(), schoolID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	member, _ := currentMembership(c)
	resp := gin.H{
		"school": schoolResponse(sch),
		"access": decision,
	}
	if member != nil {
		resp["role"] = member.Role
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) ListMembers(c *gin.Context) {
	schoolID, ok := currentSchoolID(c)
	if !ok {
		AbortWithError(c, ErrForbidden)
		return
	}

	members, err := s.schoolsvc.ListMembers(c.Request.Context(), schoolID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

func (s *Server) SetMemberStatus(c *gin.Context) {
	schoolID, ok := currentSchoolID(c)
	if !ok {
		AbortWithError(c, ErrForbidden)
		return
	}

	memberID, err := snowflake.ParseString(c.Param("memberID"))
	if err != nil || memberID == 0 {
		AbortWithError(c, schooldomain.ErrMemberNotFound)
		return
	}

	var req setMemberStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.schoolsvc.SetMemberStatus(c.Request.Context(), schoolID, memberID, req.Status); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) RemoveMember(c *gin.Context) {
	schoolID, ok := currentSchoolID(c)
	if !ok {
		AbortWithError(c, ErrForbidden)
		return
	}

	memberID, err := snowflake.ParseString(c.Param("memberID"))
	if err != nil || memberID == 0 {
		AbortWithError(c, schooldomain.ErrMemberNotFound)
		return
	}

	if err := s.schoolsvc.RemoveMember(c.Request.Context(), schoolID, memberID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

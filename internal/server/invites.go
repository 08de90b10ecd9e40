package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	invitedomain "github.com/orbitaagency1ia/miautoescuela/internal/invite/domain"
	"go.uber.org/zap"
)

type createInviteRequest struct {
	Email     string `json:"email"`
	Role      string `json:"role"`
	ExpiresIn int    `json:"expires_in_hours"`
}

type redeemInviteRequest struct {
	Token    string `json:"token"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

// CreateInvite returns the raw token exactly once. Only its hash is stored,
// so a lost token means issuing a new invitation.
func (s *Server) CreateInvite(c *gin.Context) {
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

	var req createInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.inviteSvc.Create(c.Request.Context(), invitedomain.CreateRequest{
		SchoolID:  schoolID,
		Email:     req.Email,
		Role:      req.Role,
		InvitedBy: userID,
		ExpiresIn: time.Duration(req.ExpiresIn) * time.Hour,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"invitation": result.Invitation,
		"token":      result.RawToken,
	})
}

func (s *Server) ListInvites(c *gin.Context) {
	schoolID, ok := currentSchoolID(c)
	if !ok {
		AbortWithError(c, ErrForbidden)
		return
	}

	invitations, err := s.inviteSvc.List(c.Request.Context(), schoolID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invitations": invitations})
}

func (s *Server) DeleteInvite(c *gin.Context) {
	schoolID, ok := currentSchoolID(c)
	if !ok {
		AbortWithError(c, ErrForbidden)
		return
	}

	inviteID, err := snowflake.ParseString(c.Param("inviteID"))
	if err != nil || inviteID == 0 {
		AbortWithError(c, invitedomain.ErrInviteNotFound)
		return
	}

	if err := s.inviteSvc.Delete(c.Request.Context(), schoolID, inviteID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RedeemInvite is unauthenticated: the token is the credential. On success
// the new user is signed in immediately.
func (s *Server) RedeemInvite(c *gin.Context) {
	if s.limiter.Enabled() {
		allowed, err := s.limiter.AllowRedeem(c.Request.Context(), c.ClientIP())
		if err != nil {
			s.log.Warn("redeem rate limit check failed", zap.Error(err))
		} else if !allowed {
			s.metrics.InviteRedemptions.WithLabelValues("rate_limited").Inc()
			AbortWithError(c, ErrRateLimited)
			return
		}
	}

	var req redeemInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.inviteSvc.Redeem(c.Request.Context(), invitedomain.RedeemRequest{
		RawToken:  req.Token,
		FullName:  req.FullName,
		Password:  req.Password,
		Phone:     req.Phone,
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		s.metrics.InviteRedemptions.WithLabelValues(redeemOutcome(err)).Inc()
		AbortWithError(c, err)
		return
	}

	s.metrics.InviteRedemptions.WithLabelValues("success").Inc()

	resp := gin.H{
		"user_id":   result.UserID.String(),
		"school_id": result.SchoolID.String(),
		"role":      result.Role,
	}
	if result.Session != nil {
		s.sessions.Set(c, result.Session.RawToken, result.Session.ExpiresAt)
		resp["session"] = result.Session.Session
	}
	c.JSON(http.StatusCreated, resp)
}

func redeemOutcome(err error) string {
	switch {
	case errors.Is(err, invitedomain.ErrInviteInvalid):
		return "invalid_token"
	case errors.Is(err, invitedomain.ErrEmailRegistered):
		return "email_registered"
	case errors.Is(err, invitedomain.ErrProvisioningFailed):
		return "provisioning_failed"
	case errors.Is(err, invitedomain.ErrInvalidRedeemRequest):
		return "invalid_request"
	default:
		return "error"
	}
}

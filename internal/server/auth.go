package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/orbitaagency1ia/miautoescuela/internal/auth/domain"
	profiledomain "github.com/orbitaagency1ia/miautoescuela/internal/profile/domain"
	schooldomain "github.com/orbitaagency1ia/miautoescuela/internal/school/domain"
	"go.uber.org/zap"
)

type SignupRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	FullName   string `json:"full_name"`
	Phone      string `json:"phone"`
	SchoolName string `json:"school_name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type UpdateMeRequest struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

// Signup bootstraps a school: it creates the account, its profile and a
// school owned by the new user, then signs them in.
func (s *Server) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.SchoolName) == "" {
		AbortWithError(c, newValidationError("school_name", "required", "school name is required"))
		return
	}

	ctx := c.Request.Context()
	user, err := s.authsvc.CreateUser(ctx, authdomain.CreateUserRequest{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Phone:    req.Phone,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if _, err := s.profileSvc.Create(ctx, profiledomain.CreateRequest{
		UserID:   user.ID,
		FullName: req.FullName,
		Phone:    req.Phone,
		Email:    user.Email,
	}); err != nil {
		s.log.Error("signup profile create failed", zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	sch, err := s.schoolsvc.Create(ctx, user.ID, schooldomain.CreateSchoolRequest{Name: req.SchoolName})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.authsvc.LoginAs(ctx, user.ID, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.sessions.Set(c, result.RawToken, result.ExpiresAt)

	c.JSON(http.StatusCreated, gin.H{
		"user":   result.Session,
		"school": schoolResponse(sch),
	})
}

func (s *Server) Login(c *gin.Context) {
	if s.limiter.Enabled() {
		allowed, err := s.limiter.AllowLogin(c.Request.Context(), c.ClientIP())
		if err != nil {
			s.log.Warn("login rate limit check failed", zap.Error(err))
		} else if !allowed {
			s.metrics.Logins.WithLabelValues("rate_limited").Inc()
			AbortWithError(c, ErrRateLimited)
			return
		}
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.authsvc.Login(c.Request.Context(), authdomain.LoginRequest{
		Email:     req.Email,
		Password:  req.Password,
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		s.metrics.Logins.WithLabelValues("failure").Inc()
		AbortWithError(c, err)
		return
	}

	s.metrics.Logins.WithLabelValues("success").Inc()
	s.sessions.Set(c, result.RawToken, result.ExpiresAt)
	c.JSON(http.StatusOK, result.Session)
}

func (s *Server) Logout(c *gin.Context) {
	if token, ok := s.sessions.ReadToken(c); ok {
		if err := s.authsvc.Logout(c.Request.Context(), token); err != nil {
			s.log.Warn("logout failed", zap.Error(err))
		}
	}
	s.sessions.Clear(c)
	c.Status(http.StatusNoContent)
}

func (s *Server) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	user, err := s.authsvc.GetUser(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	profile, err := s.profileSvc.Get(c.Request.Context(), userID)
	if err != nil {
		profile = nil
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        user.ID.String(),
		"email":     user.Email,
		"full_name": user.FullName,
		"profile":   profile,
	})
}

func (s *Server) UpdateMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	profile, err := s.profileSvc.Update(c.Request.Context(), userID, profiledomain.UpdateRequest{
		FullName: req.FullName,
		Phone:    req.Phone,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (s *Server) ChangePassword(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.authsvc.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

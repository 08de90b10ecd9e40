package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	schooldomain "github.com/orbitaagency1ia/miautoescuela/internal/school/domain"
)

const (
	contextUserIDKey     = "user_id"
	contextSchoolIDKey   = "school_id"
	contextMembershipKey = "membership"
)

// AuthRequired resolves the session cookie into a user id. Everything behind
// it can rely on currentUserID returning a valid id.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		sess, err := s.authsvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			s.sessions.Clear(c)
			AbortWithError(c, err)
			return
		}

		c.Set(contextUserIDKey, sess.UserID)
		c.Next()
	}
}

// SchoolContext parses the :id path segment and loads the caller's active
// membership in that school. Suspended and removed members are rejected.
func (s *Server) SchoolContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		schoolID, err := snowflake.ParseString(c.Param("id"))
		if err != nil || schoolID == 0 {
			AbortWithError(c, schooldomain.ErrInvalidSchool)
			return
		}

		member, err := s.schoolsvc.GetMembership(c.Request.Context(), schoolID, userID)
		if err != nil {
			AbortWithError(c, ErrForbidden)
			return
		}
		if member.Status != schooldomain.MemberActive {
			AbortWithError(c, ErrForbidden)
			return
		}

		c.Set(contextSchoolIDKey, schoolID)
		c.Set(contextMembershipKey, member)
		c.Next()
	}
}

// RequireAuthorization enforces the member role against one object/action
// pair. Must run after SchoolContext.
func (s *Server) RequireAuthorization(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		member, ok := currentMembership(c)
		if !ok {
			AbortWithError(c, ErrForbidden)
			return
		}

		err := s.authzSvc.Authorize(
			c.Request.Context(),
			userID.String(),
			member.SchoolID.String(),
			member.Role,
			object,
			action,
		)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

// SubscriptionRequired re-evaluates the billing gate on every request. A
// denial returns 402 with the decision so the UI can explain the block.
// Nothing is cached between requests; a webhook that reactivates the
// subscription takes effect immediately.
func (s *Server) SubscriptionRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		schoolID, ok := currentSchoolID(c)
		if !ok {
			AbortWithError(c, ErrForbidden)
			return
		}

		decision, err := s.subscriptionSvc.Check(c.Request.Context(), schoolID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if !decision.Allowed {
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{
				"error": gin.H{
					"type":    "subscription_inactive",
					"message": "subscription is not active",
					"reason":  decision.Reason,
				},
			})
			return
		}
		c.Next()
	}
}

// PlatformAdminRequired restricts a route to platform operators.
func (s *Server) PlatformAdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
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
		if !user.IsPlatformAdmin {
			AbortWithError(c, ErrForbidden)
			return
		}
		c.Next()
	}
}

func currentUserID(c *gin.Context) (snowflake.ID, bool) {
	v, ok := c.Get(contextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(snowflake.ID)
	return id, ok && id != 0
}

func currentSchoolID(c *gin.Context) (snowflake.ID, bool) {
	v, ok := c.Get(contextSchoolIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(snowflake.ID)
	return id, ok && id != 0
}

func currentMembership(c *gin.Context) (*schooldomain.SchoolMember, bool) {
	v, ok := c.Get(contextMembershipKey)
	if !ok {
		return nil, false
	}
	member, ok := v.(*schooldomain.SchoolMember)
	return member, ok && member != nil
}

package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	schooldomain "github.com/orbitaagency1ia/miautoescuela/internal/school/domain"
)

type overrideSubscriptionRequest struct {
	Status string `json:"status"`
}

func (s *Server) AdminListSchools(c *gin.Context) {
	schools, err := s.schoolsvc.ListAll(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	items := make([]gin.H, 0, len(schools))
	for i := range schools {
		sch := &schools[i]
		items = append(items, gin.H{
			"id":                  sch.ID.String(),
			"name":                sch.Name,
			"slug":                sch.Slug,
			"subscription_status": sch.SubscriptionStatus,
			"trial_ends_at":       sch.TrialEndsAt,
			"created_at":          sch.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"schools": items})
}

// AdminOverrideSubscription forces a subscription status outside the webhook
// flow, for support interventions.
func (s *Server) AdminOverrideSubscription(c *gin.Context) {
	schoolID, err := snowflake.ParseString(c.Param("id"))
	if err != nil || schoolID == 0 {
		AbortWithError(c, schooldomain.ErrInvalidSchool)
		return
	}

	var req overrideSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.subscriptionSvc.Override(c.Request.Context(), schoolID, req.Status); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

package server

import (
	"fmt"
	"io"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	certificatedomain "github.com/orbitaagency1ia/miautoescuela/internal/certificate/domain"
	schooldomain "github.com/orbitaagency1ia/miautoescuela/internal/school/domain"
)

type issueCertificateRequest struct {
	ModuleID string `json:"module_id"`
	UserID   string `json:"user_id"`
}

// IssueCertificate issues for the caller by default; admins and owners can
// issue on behalf of another member.
func (s *Server) IssueCertificate(c *gin.Context) {
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

	var req issueCertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	moduleID, err := snowflake.ParseString(req.ModuleID)
	if err != nil || moduleID == 0 {
		AbortWithError(c, certificatedomain.ErrInvalidCertificate)
		return
	}

	target := userID
	if req.UserID != "" {
		parsed, err := snowflake.ParseString(req.UserID)
		if err != nil || parsed == 0 {
			AbortWithError(c, certificatedomain.ErrInvalidCertificate)
			return
		}
		if parsed != userID {
			member, _ := currentMembership(c)
			if member == nil || member.Role == schooldomain.RoleStudent {
				AbortWithError(c, ErrForbidden)
				return
			}
		}
		target = parsed
	}

	certificate, err := s.certificateSvc.Issue(c.Request.Context(), certificatedomain.IssueRequest{
		SchoolID: schoolID,
		UserID:   target,
		ModuleID: moduleID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, certificate)
}

func (s *Server) ListCertificates(c *gin.Context) {
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

	target := userID
	if raw := c.Query("user_id"); raw != "" {
		parsed, err := snowflake.ParseString(raw)
		if err != nil || parsed == 0 {
			AbortWithError(c, certificatedomain.ErrInvalidCertificate)
			return
		}
		if parsed != userID {
			member, _ := currentMembership(c)
			if member == nil || member.Role == schooldomain.RoleStudent {
				AbortWithError(c, ErrForbidden)
				return
			}
		}
		target = parsed
	}

	certificates, err := s.certificateSvc.List(c.Request.Context(), schoolID, target)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"certificates": certificates})
}

func (s *Server) DownloadCertificate(c *gin.Context) {
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

	certificateID, err := snowflake.ParseString(c.Param("certificateID"))
	if err != nil || certificateID == 0 {
		AbortWithError(c, certificatedomain.ErrCertificateNotFound)
		return
	}

	doc, certificate, err := s.certificateSvc.Render(c.Request.Context(), schoolID, certificateID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// Students can only fetch their own documents.
	if certificate.UserID != userID {
		member, _ := currentMembership(c)
		if member == nil || member.Role == schooldomain.RoleStudent {
			AbortWithError(c, ErrForbidden)
			return
		}
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", certificate.SerialNumber))
	if _, err := io.Copy(c.Writer, doc); err != nil {
		s.log.Warn("certificate stream interrupted")
	}
}

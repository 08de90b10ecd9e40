package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	authdomain "github.com/orbitaagency1ia/miautoescuela/internal/auth/domain"
	"github.com/orbitaagency1ia/miautoescuela/internal/authorization"
	certificatedomain "github.com/orbitaagency1ia/miautoescuela/internal/certificate/domain"
	coursedomain "github.com/orbitaagency1ia/miautoescuela/internal/course/domain"
	invitedomain "github.com/orbitaagency1ia/miautoescuela/internal/invite/domain"
	profiledomain "github.com/orbitaagency1ia/miautoescuela/internal/profile/domain"
	schooldomain "github.com/orbitaagency1ia/miautoescuela/internal/school/domain"
	subscriptiondomain "github.com/orbitaagency1ia/miautoescuela/internal/subscription/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrRateLimited        = errors.New("rate_limited")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	switch {
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	case errors.Is(err, invitedomain.ErrInviteInvalid):
		// One payload for missing, used and expired tokens.
		return http.StatusBadRequest, errorPayload{
			Type:    "invite_invalid",
			Message: "invitation is invalid or has expired",
		}
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidSession),
		errors.Is(err, authdomain.ErrSessionNotFound),
		errors.Is(err, authdomain.ErrSessionExpired),
		errors.Is(err, authdomain.ErrSessionRevoked):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden),
		errors.Is(err, schooldomain.ErrOwnerImmutable):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, ErrConflict),
		errors.Is(err, authdomain.ErrUserExists),
		errors.Is(err, schooldomain.ErrMemberExists),
		errors.Is(err, invitedomain.ErrEmailRegistered):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case errors.Is(err, invitedomain.ErrProvisioningFailed),
		errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable, please retry",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, authdomain.ErrWeakPassword),
		errors.Is(err, invitedomain.ErrInvalidRedeemRequest),
		errors.Is(err, invitedomain.ErrInvalidInvite),
		errors.Is(err, schooldomain.ErrInvalidSchool),
		errors.Is(err, schooldomain.ErrInvalidName),
		errors.Is(err, schooldomain.ErrInvalidRole),
		errors.Is(err, schooldomain.ErrInvalidUser),
		errors.Is(err, coursedomain.ErrInvalidModule),
		errors.Is(err, coursedomain.ErrInvalidLesson),
		errors.Is(err, profiledomain.ErrInvalidProfile),
		errors.Is(err, certificatedomain.ErrInvalidCertificate),
		errors.Is(err, certificatedomain.ErrModuleIncomplete),
		errors.Is(err, subscriptiondomain.ErrInvalidEvent):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, authdomain.ErrUserNotFound),
		errors.Is(err, schooldomain.ErrSchoolNotFound),
		errors.Is(err, schooldomain.ErrMemberNotFound),
		errors.Is(err, invitedomain.ErrInviteNotFound),
		errors.Is(err, coursedomain.ErrModuleNotFound),
		errors.Is(err, coursedomain.ErrLessonNotFound),
		errors.Is(err, profiledomain.ErrProfileNotFound),
		errors.Is(err, certificatedomain.ErrCertificateNotFound),
		errors.Is(err, subscriptiondomain.ErrUnknownSchool),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

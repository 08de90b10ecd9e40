package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/orbitaagency1ia/miautoescuela/internal/auth"
	authdomain "github.com/orbitaagency1ia/miautoescuela/internal/auth/domain"
	"github.com/orbitaagency1ia/miautoescuela/internal/auth/session"
	"github.com/orbitaagency1ia/miautoescuela/internal/authorization"
	"github.com/orbitaagency1ia/miautoescuela/internal/certificate"
	certificatedomain "github.com/orbitaagency1ia/miautoescuela/internal/certificate/domain"
	"github.com/orbitaagency1ia/miautoescuela/internal/config"
	"github.com/orbitaagency1ia/miautoescuela/internal/course"
	coursedomain "github.com/orbitaagency1ia/miautoescuela/internal/course/domain"
	"github.com/orbitaagency1ia/miautoescuela/internal/invite"
	invitedomain "github.com/orbitaagency1ia/miautoescuela/internal/invite/domain"
	"github.com/orbitaagency1ia/miautoescuela/internal/profile"
	profiledomain "github.com/orbitaagency1ia/miautoescuela/internal/profile/domain"
	"github.com/orbitaagency1ia/miautoescuela/internal/providers/email"
	"github.com/orbitaagency1ia/miautoescuela/internal/providers/pdf"
	"github.com/orbitaagency1ia/miautoescuela/internal/ratelimit"
	"github.com/orbitaagency1ia/miautoescuela/internal/school"
	schooldomain "github.com/orbitaagency1ia/miautoescuela/internal/school/domain"
	"github.com/orbitaagency1ia/miautoescuela/internal/subscription"
	subscriptiondomain "github.com/orbitaagency1ia/miautoescuela/internal/subscription/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	authorization.Module,
	auth.Module,
	session.Module,
	email.Module,
	pdf.Module,
	profile.Module,
	school.Module,
	invite.Module,
	course.Module,
	subscription.Module,
	certificate.Module,
	ratelimit.Module,
	fx.Provide(NewMetrics),
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log.Named("http")))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	log             *zap.Logger
	authsvc         authdomain.Service
	sessions        *session.Manager
	authzSvc        authorization.Service
	profileSvc      profiledomain.Service
	schoolsvc       schooldomain.Service
	inviteSvc       invitedomain.Service
	courseSvc       coursedomain.Service
	subscriptionSvc subscriptiondomain.Service
	certificateSvc  certificatedomain.Service
	limiter         *ratelimit.AuthLimiter
	metrics         *Metrics
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	Log             *zap.Logger
	Authsvc         authdomain.Service
	Sessions        *session.Manager
	AuthzSvc        authorization.Service
	ProfileSvc      profiledomain.Service
	Schoolsvc       schooldomain.Service
	InviteSvc       invitedomain.Service
	CourseSvc       coursedomain.Service
	SubscriptionSvc subscriptiondomain.Service
	CertificateSvc  certificatedomain.Service
	Limiter         *ratelimit.AuthLimiter `optional:"true"`
	Metrics         *Metrics
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		log:             p.Log.Named("server"),
		authsvc:         p.Authsvc,
		sessions:        p.Sessions,
		authzSvc:        p.AuthzSvc,
		profileSvc:      p.ProfileSvc,
		schoolsvc:       p.Schoolsvc,
		inviteSvc:       p.InviteSvc,
		courseSvc:       p.CourseSvc,
		subscriptionSvc: p.SubscriptionSvc,
		certificateSvc:  p.CertificateSvc,
		limiter:         p.Limiter,
		metrics:         p.Metrics,
	}

	svc.registerAuthRoutes()
	svc.registerPublicRoutes()
	svc.registerSchoolRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) registerAuthRoutes() {
	api := s.engine.Group("/api/auth")
	api.POST("/signup", s.Signup)
	api.POST("/login", s.Login)

	authed := api.Group("", s.AuthRequired())
	authed.POST("/logout", s.Logout)
	authed.GET("/me", s.Me)
	authed.PUT("/me", s.UpdateMe)
	authed.POST("/password", s.ChangePassword)
}

func (s *Server) registerPublicRoutes() {
	s.engine.POST("/api/invites/redeem", s.RedeemInvite)
	s.engine.POST("/api/billing/webhooks/:provider", s.BillingWebhook)
}

func (s *Server) registerSchoolRoutes() {
	api := s.engine.Group("/api/schools", s.AuthRequired())
	api.GET("", s.ListMySchools)

	scoped := api.Group("/:id", s.SchoolContext())
	scoped.GET("", s.GetSchool)

	members := scoped.Group("/members")
	members.GET("", s.RequireAuthorization(authorization.ObjectMember, authorization.ActionView), s.ListMembers)
	members.PATCH("/:memberID", s.RequireAuthorization(authorization.ObjectMember, authorization.ActionUpdate), s.SetMemberStatus)
	members.DELETE("/:memberID", s.RequireAuthorization(authorization.ObjectMember, authorization.ActionDelete), s.RemoveMember)

	invites := scoped.Group("/invites", s.SubscriptionRequired())
	invites.POST("", s.RequireAuthorization(authorization.ObjectInvite, authorization.ActionCreate), s.CreateInvite)
	invites.GET("", s.RequireAuthorization(authorization.ObjectInvite, authorization.ActionView), s.ListInvites)
	invites.DELETE("/:inviteID", s.RequireAuthorization(authorization.ObjectInvite, authorization.ActionDelete), s.DeleteInvite)

	modules := scoped.Group("/modules", s.SubscriptionRequired())
	modules.GET("", s.RequireAuthorization(authorization.ObjectModule, authorization.ActionView), s.ListModules)
	modules.POST("", s.RequireAuthorization(authorization.ObjectModule, authorization.ActionCreate), s.CreateModule)
	modules.PUT("/:moduleID", s.RequireAuthorization(authorization.ObjectModule, authorization.ActionUpdate), s.UpdateModule)
	modules.DELETE("/:moduleID", s.RequireAuthorization(authorization.ObjectModule, authorization.ActionDelete), s.DeleteModule)
	modules.GET("/:moduleID/lessons", s.RequireAuthorization(authorization.ObjectLesson, authorization.ActionView), s.ListLessons)

	lessons := scoped.Group("/lessons", s.SubscriptionRequired())
	lessons.POST("", s.RequireAuthorization(authorization.ObjectLesson, authorization.ActionCreate), s.CreateLesson)
	lessons.GET("/:lessonID", s.RequireAuthorization(authorization.ObjectLesson, authorization.ActionView), s.GetLesson)
	lessons.PUT("/:lessonID", s.RequireAuthorization(authorization.ObjectLesson, authorization.ActionUpdate), s.UpdateLesson)
	lessons.DELETE("/:lessonID", s.RequireAuthorization(authorization.ObjectLesson, authorization.ActionDelete), s.DeleteLesson)
	lessons.POST("/:lessonID/complete", s.RequireAuthorization(authorization.ObjectProgress, authorization.ActionCreate), s.CompleteLesson)

	progress := scoped.Group("/progress", s.SubscriptionRequired())
	progress.GET("", s.RequireAuthorization(authorization.ObjectProgress, authorization.ActionView), s.ListProgress)

	certificates := scoped.Group("/certificates", s.SubscriptionRequired())
	certificates.POST("", s.RequireAuthorization(authorization.ObjectCertificate, authorization.ActionCreate), s.IssueCertificate)
	certificates.GET("", s.RequireAuthorization(authorization.ObjectCertificate, authorization.ActionView), s.ListCertificates)
	certificates.GET("/:certificateID/pdf", s.RequireAuthorization(authorization.ObjectCertificate, authorization.ActionView), s.DownloadCertificate)
}

func (s *Server) registerAdminRoutes() {
	api := s.engine.Group("/api/admin", s.AuthRequired(), s.PlatformAdminRequired())
	api.GET("/schools", s.AdminListSchools)
	api.POST("/schools/:id/subscription", s.AdminOverrideSubscription)
}

package migration

import (
	authdomain "github.com/orbitaagency1ia/miautoescuela/internal/auth/domain"
	certificatedomain "github.com/orbitaagency1ia/miautoescuela/internal/certificate/domain"
	"github.com/orbitaagency1ia/miautoescuela/internal/config"
	coursedomain "github.com/orbitaagency1ia/miautoescuela/internal/course/domain"
	invitedomain "github.com/orbitaagency1ia/miautoescuela/internal/invite/domain"
	profiledomain "github.com/orbitaagency1ia/miautoescuela/internal/profile/domain"
	schooldomain "github.com/orbitaagency1ia/miautoescuela/internal/school/domain"
	"github.com/orbitaagency1ia/miautoescuela/internal/seed"
	subscriptiondomain "github.com/orbitaagency1ia/miautoescuela/internal/subscription/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// mysql and sqlite deployments rely on gorm's schema sync.
			if err := conn.AutoMigrate(
				&authdomain.User{},
				&authdomain.Session{},
				&profiledomain.Profile{},
				&schooldomain.School{},
				&schooldomain.SchoolMember{},
				&invitedomain.Invitation{},
				&coursedomain.CourseModule{},
				&coursedomain.Lesson{},
				&coursedomain.LessonProgress{},
				&certificatedomain.Certificate{},
				&subscriptiondomain.ProcessedEvent{},
			); err != nil {
				return err
			}
		}

		return seed.EnsurePlatformAdmin(conn, cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword)
	}),
)

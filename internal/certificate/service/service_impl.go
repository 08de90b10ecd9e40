package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/orbitaagency1ia/miautoescuela/internal/auth/domain"
	"github.com/orbitaagency1ia/miautoescuela/internal/certificate/domain"
	"github.com/orbitaagency1ia/miautoescuela/internal/clock"
	coursedomain "github.com/orbitaagency1ia/miautoescuela/internal/course/domain"
	"github.com/orbitaagency1ia/miautoescuela/internal/providers/pdf"
	schooldomain "github.com/orbitaagency1ia/miautoescuela/internal/school/domain"
	"go.uber.org/zap"
)

const serialBytes = 6

type service struct {
	log       *zap.Logger
	repo      domain.Repository
	coursesvc coursedomain.Service
	authsvc   authdomain.Service
	schoolsvc schooldomain.Service
	renderer  pdf.Provider
	genID     *snowflake.Node
	clock     clock.Clock
}

func NewService(
	log *zap.Logger,
	repo domain.Repository,
	coursesvc coursedomain.Service,
	authsvc authdomain.Service,
	schoolsvc schooldomain.Service,
	renderer pdf.Provider,
	genID *snowflake.Node,
	clk clock.Clock,
) domain.Service {
	return &service{
		log:       log.Named("certificate.service"),
		repo:      repo,
		coursesvc: coursesvc,
		authsvc:   authsvc,
		schoolsvc: schoolsvc,
		renderer:  renderer,
		genID:     genID,
		clock:     clk,
	}
}

// Issue creates a certificate for a completed module. Every lesson of the
// module must have been completed by the student first.
func (s *service) Issue(ctx context.Context, req domain.IssueRequest) (*domain.Certificate, error) {
	if req.SchoolID == 0 || req.UserID == 0 || req.ModuleID == 0 {
		return nil, domain.ErrInvalidCertificate
	}

	module, err := s.coursesvc.GetModule(ctx, req.SchoolID, req.ModuleID)
	if err != nil {
		return nil, err
	}

	done, err := s.coursesvc.ModuleCompleted(ctx, req.SchoolID, req.ModuleID, req.UserID)
	if err != nil {
		return nil, err
	}
	if !done {
		return nil, domain.ErrModuleIncomplete
	}

	serial, err := newSerialNumber()
	if err != nil {
		return nil, err
	}

	certificate := &domain.Certificate{
		ID:           s.genID.Generate(),
		SchoolID:     req.SchoolID,
		UserID:       req.UserID,
		ModuleID:     req.ModuleID,
		Title:        module.Title,
		SerialNumber: serial,
		IssuedAt:     s.clock.Now(),
	}
	if err := s.repo.Create(ctx, certificate); err != nil {
		return nil, err
	}

	s.log.Info("certificate issued",
		zap.String("school_id", req.SchoolID.String()),
		zap.String("user_id", req.UserID.String()),
		zap.String("serial_number", serial),
	)
	return certificate, nil
}

func (s *service) List(ctx context.Context, schoolID, userID snowflake.ID) ([]domain.Certificate, error) {
	return s.repo.ListByUser(ctx, schoolID, userID)
}

// Render loads the certificate and produces its PDF document.
func (s *service) Render(ctx context.Context, schoolID, certificateID snowflake.ID) (io.Reader, *domain.Certificate, error) {
	certificate, err := s.repo.FindByID(ctx, schoolID, certificateID)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.authsvc.GetUser(ctx, certificate.UserID)
	if err != nil {
		return nil, nil, err
	}

	school, err := s.schoolsvc.GetByID(ctx, certificate.SchoolID)
	if err != nil {
		return nil, nil, err
	}

	doc, err := s.renderer.GenerateCertificate(ctx, pdf.CertificateData{
		SerialNumber: certificate.SerialNumber,
		StudentName:  user.FullName,
		SchoolName:   school.Name,
		Title:        certificate.Title,
		IssuedAt:     certificate.IssuedAt.Format("02/01/2006"),
	})
	if err != nil {
		return nil, nil, err
	}
	return doc, certificate, nil
}

func newSerialNumber() (string, error) {
	buf := make([]byte, serialBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return fmt.Sprintf("CERT-%s", strings.ToUpper(hex.EncodeToString(buf))), nil
}

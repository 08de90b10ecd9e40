package pdf

import (
	"context"
	"io"
)

// CertificateData carries everything the renderer needs; the provider knows
// nothing about domain entities.
type CertificateData struct {
	SerialNumber string
	StudentName  string
	SchoolName   string
	Title        string
	IssuedAt     string
}

type Provider interface {
	GenerateCertificate(ctx context.Context, data CertificateData) (io.Reader, error)
}

type NoOpProvider struct{}

func (p *NoOpProvider) GenerateCertificate(ctx context.Context, data CertificateData) (io.Reader, error) {
	return nil, nil
}

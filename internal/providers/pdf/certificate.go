package pdf

import (
	"bytes"
	"context"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type PDFProvider struct{}

func NewPDFProvider() *PDFProvider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateCertificate(ctx context.Context, data CertificateData) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Horizontal).
		WithLeftMargin(25).
		WithTopMargin(25).
		WithRightMargin(25).
		Build()

	m := maroto.New(cfg)

	m.AddRow(30,
		text.NewCol(12, "Certificado", props.Text{
			Size:  28,
			Style: fontstyle.Bold,
			Align: align.Center,
		}),
	)

	m.AddRow(15,
		text.NewCol(12, data.SchoolName, props.Text{
			Size:  14,
			Align: align.Center,
		}),
	)

	m.AddRow(12,
		text.NewCol(12, "certifica que", props.Text{
			Size:  11,
			Align: align.Center,
		}),
	)

	m.AddRow(20,
		text.NewCol(12, data.StudentName, props.Text{
			Size:  22,
			Style: fontstyle.Bold,
			Align: align.Center,
		}),
	)

	m.AddRow(14,
		text.NewCol(12, "ha completado satisfactoriamente", props.Text{
			Size:  11,
			Align: align.Center,
		}),
	)

	m.AddRow(16,
		text.NewCol(12, data.Title, props.Text{
			Size:  16,
			Style: fontstyle.Bold,
			Align: align.Center,
		}),
	)

	m.AddRow(20,
		col.New(6).Add(
			text.New("Fecha de emisión: "+data.IssuedAt, props.Text{Top: 8, Size: 10}),
		),
		col.New(6).Add(
			text.New("Nº de serie: "+data.SerialNumber, props.Text{Top: 8, Size: 10, Align: align.Right}),
		),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}

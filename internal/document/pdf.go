package document

import (
	"context"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type Renderer interface {
	Render(ctx context.Context, data Data) ([]byte, error)
}

type PDFRenderer struct{}

func NewPDFRenderer() Renderer {
	return &PDFRenderer{}
}

var (
	small     = props.Text{Size: 9}
	smallBold = props.Text{Size: 9, Style: fontstyle.Bold}
	right     = props.Text{Size: 9, Align: align.Right}
	rightBold = props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}
)

func (r *PDFRenderer) Render(_ context.Context, data Data) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(8, "Work order", props.Text{Size: 20, Style: fontstyle.Bold}),
		text.NewCol(4, data.Number, props.Text{Size: 12, Style: fontstyle.Bold, Align: align.Right, Top: 3}),
	)

	m.AddRow(20,
		col.New(6).Add(
			text.New("Date: "+data.IssueDate, props.Text{Top: 0}),
			text.New("Status: "+data.Status, props.Text{Top: 4}),
			text.New("Scheduled: "+data.Scheduled, props.Text{Top: 8}),
			text.New(data.Title, props.Text{Top: 12, Style: fontstyle.Bold}),
		),
		col.New(6).Add(
			text.New("Customer", props.Text{Style: fontstyle.Bold}),
			text.New(data.CustomerName, props.Text{Top: 4}),
			text.New(data.CustomerEmail, props.Text{Top: 8}),
			text.New("Work site: "+data.WorkAddress, props.Text{Top: 12}),
		),
	)

	m.AddRow(10,
		text.NewCol(5, "Description", smallBold),
		text.NewCol(2, "Quantity", rightBold),
		text.NewCol(2, "Unit price", rightBold),
		text.NewCol(1, "Disc.", rightBold),
		text.NewCol(2, "Amount", rightBold),
	)
	for _, line := range data.Lines {
		m.AddRow(8,
			text.NewCol(5, line.Description, small),
			text.NewCol(2, line.Quantity, right),
			text.NewCol(2, line.UnitPrice, right),
			text.NewCol(1, line.Discount, right),
			text.NewCol(2, line.Amount, right),
		)
	}

	m.AddRow(6)
	total(m, "Total excl. VAT", data.TotalExclTax, false)
	total(m, "VAT", data.VAT, false)
	total(m, "Total incl. VAT", data.TotalInclTax, data.Deduction == nil)

	if d := data.Deduction; d != nil {
		total(m, "Labor incl. VAT", d.LaborTotal, false)
		total(m, d.Label, d.Amount, false)
		total(m, "To pay", d.Payable, true)
	}

	if data.Notes != "" {
		m.AddRow(6)
		m.AddRow(20,
			col.New(12).Add(
				text.New("Notes", smallBold),
				text.New(data.Notes, props.Text{Size: 9, Top: 5}),
			),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

func total(m core.Maroto, label, value string, bold bool) {
	labelProps, valueProps := small, right
	if bold {
		labelProps, valueProps = smallBold, rightBold
	}
	m.AddRow(7,
		col.New(7),
		text.NewCol(3, label, labelProps),
		text.NewCol(2, value, valueProps),
	)
}

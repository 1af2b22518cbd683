// Package document renders work orders as PDF. Everything printed comes from
// the order as stored: line snapshots and totals, never the live catalog.
package document

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	catalogdomain "github.com/smallbiznis/glazier/internal/catalog/domain"
	"github.com/smallbiznis/glazier/internal/config"
	customerdomain "github.com/smallbiznis/glazier/internal/customer/domain"
	"github.com/smallbiznis/glazier/internal/pricing"
	workorderdomain "github.com/smallbiznis/glazier/internal/workorder/domain"
)

type Data struct {
	Number    string
	IssueDate string
	Status    string
	Title     string
	Scheduled string

	CustomerName    string
	CustomerAddress string
	CustomerEmail   string
	WorkAddress     string

	Lines []LineData

	TotalExclTax string
	VAT          string
	TotalInclTax string
	Deduction    *DeductionData

	Notes string
}

type LineData struct {
	Description string
	Quantity    string
	UnitPrice   string
	Discount    string
	Amount      string
}

type DeductionData struct {
	Label      string
	LaborTotal string
	Amount     string
	Payable    string
}

const dateLayout = "2006-01-02"

// BuildData lays out order for printing from its stored totals. Amounts are
// rounded here and only here.
func BuildData(order workorderdomain.WorkOrder, customer customerdomain.Customer, cfg config.PricingConfig, issuedAt time.Time) Data {
	money := pricing.Money{Currency: cfg.Currency, Precision: cfg.Precision}
	quote := order.StoredQuote()

	data := Data{
		Number:          order.Number,
		IssueDate:       issuedAt.Format(dateLayout),
		Status:          strings.ReplaceAll(string(order.Status), "_", " "),
		Title:           order.Title,
		Scheduled:       schedule(order.ScheduledStart, order.ScheduledEnd),
		CustomerName:    customer.Name,
		CustomerAddress: customer.Address,
		CustomerEmail:   customer.Email,
		WorkAddress:     order.Address,
		Notes:           order.Notes,
		TotalExclTax:    money.Format(quote.Totals.TotalExclTax),
		VAT:             money.Format(quote.Totals.TotalInclTax.Sub(quote.Totals.TotalExclTax)),
		TotalInclTax:    money.Format(quote.Totals.TotalInclTax),
	}
	if data.WorkAddress == "" {
		data.WorkAddress = customer.Address
	}

	for i, line := range order.Lines {
		priced := quote.Lines[i]
		data.Lines = append(data.Lines, LineData{
			Description: description(line),
			Quantity:    quantity(line.Count, priced.MeasuredQuantity, line.PricingModel),
			UnitPrice:   money.Format(line.UnitPriceInclTax),
			Discount:    discount(line.DiscountPercent),
			Amount:      money.Format(priced.TotalInclTax),
		})
	}

	if order.TaxDeductionEnabled {
		label := cfg.DeductionLabel
		if order.TaxDeductionPercent.Valid {
			label = fmt.Sprintf("%s deduction (%s%%)", label, order.TaxDeductionPercent.Decimal.String())
		}
		data.Deduction = &DeductionData{
			Label:      label,
			LaborTotal: money.Format(quote.Totals.LaborTotalInclTax),
			Amount:     money.Format(quote.Totals.DeductionAmount.Neg()),
			Payable:    money.Format(quote.Totals.PayableAmount),
		}
	}
	return data
}

func description(line workorderdomain.Line) string {
	if line.Comment == "" {
		return line.Description
	}
	return line.Description + " - " + line.Comment
}

func quantity(count int, measured decimal.Decimal, model pricing.Model) string {
	unit := catalogdomain.DefaultUnit(model)
	qty := strings.Replace(measured.Round(3).String(), ".", ",", 1)
	if model == pricing.PerUnit {
		return fmt.Sprintf("%d %s", count, unit)
	}
	return fmt.Sprintf("%d × %s %s", count, qty, unit)
}

func discount(p decimal.NullDecimal) string {
	if !p.Valid || p.Decimal.IsZero() {
		return ""
	}
	return p.Decimal.String() + "%"
}

func schedule(start, end *time.Time) string {
	switch {
	case start == nil:
		return ""
	case end == nil:
		return start.Format("2006-01-02 15:04")
	default:
		return start.Format("2006-01-02 15:04") + " - " + end.Format("15:04")
	}
}

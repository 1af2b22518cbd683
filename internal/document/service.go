package document

import (
	"context"
	"fmt"

	"github.com/smallbiznis/glazier/internal/clock"
	"github.com/smallbiznis/glazier/internal/config"
	customerdomain "github.com/smallbiznis/glazier/internal/customer/domain"
	workorderdomain "github.com/smallbiznis/glazier/internal/workorder/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log          *zap.Logger
	Clock        clock.Clock
	WorkOrderSvc workorderdomain.Service
	CustomerSvc  customerdomain.Service
	PricingCfg   *config.PricingConfigHolder
	Renderer     Renderer
}

type Service struct {
	log          *zap.Logger
	clock        clock.Clock
	workOrderSvc workorderdomain.Service
	customerSvc  customerdomain.Service
	pricingCfg   *config.PricingConfigHolder
	renderer     Renderer
}

func NewService(p Params) *Service {
	return &Service{
		log:          p.Log.Named("document.service"),
		clock:        p.Clock,
		workOrderSvc: p.WorkOrderSvc,
		customerSvc:  p.CustomerSvc,
		pricingCfg:   p.PricingCfg,
		renderer:     p.Renderer,
	}
}

// WorkOrderPDF renders the stored order and returns a file name for it.
func (s *Service) WorkOrderPDF(ctx context.Context, id string) (string, []byte, error) {
	order, err := s.workOrderSvc.Get(ctx, id)
	if err != nil {
		return "", nil, err
	}

	customer, err := s.customerSvc.GetByID(ctx, customerdomain.GetCustomerRequest{ID: order.CustomerID.String()})
	if err != nil {
		// The order still renders without customer details.
		s.log.Warn("customer lookup failed",
			zap.String("work_order_id", order.ID.String()),
			zap.Error(err),
		)
	}

	data := BuildData(order, customer, s.pricingCfg.Get(), s.clock.Now())
	pdf, err := s.renderer.Render(ctx, data)
	if err != nil {
		return "", nil, fmt.Errorf("render work order %s: %w", order.Number, err)
	}
	return order.Number + ".pdf", pdf, nil
}

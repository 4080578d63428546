package usecases

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/matheusmosca/storefront/services/storefront/models"
	"github.com/matheusmosca/storefront/services/storefront/repository"
)

const (
	salesWindow      = 30 * 24 * time.Hour
	topProductsLimit = 5
)

// DashboardUseCase monta o painel de vendas
type DashboardUseCase struct {
	orders repository.OrderRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewDashboardUseCase(orders repository.OrderRepository, logger *zap.Logger) *DashboardUseCase {
	return &DashboardUseCase{orders: orders, logger: logger, now: time.Now}
}

// GetDashboard roda as quatro agregações em paralelo. A evolução cobre os
// últimos 30 dias a partir do início do dia, em UTC.
func (uc *DashboardUseCase) GetDashboard(ctx context.Context) (*models.Dashboard, error) {
	ctx, span := tracer.Start(ctx, "dashboard")
	defer span.End()

	since := uc.now().UTC().Add(-salesWindow).Truncate(24 * time.Hour)
	dashboard := &models.Dashboard{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		summary, err := uc.orders.SalesSummary(gctx, models.RevenueStatuses)
		dashboard.Summary = summary
		return err
	})
	g.Go(func() error {
		evolution, err := uc.orders.SalesByDay(gctx, models.RevenueStatuses, since)
		dashboard.Evolution = evolution
		return err
	})
	g.Go(func() error {
		top, err := uc.orders.TopProducts(gctx, models.RevenueStatuses, topProductsLimit)
		dashboard.TopProducts = top
		return err
	})
	g.Go(func() error {
		counts, err := uc.orders.CountByStatus(gctx)
		dashboard.OrdersByStatus = counts
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		uc.logger.Error("❌ [DASHBOARD] FAILED", zap.Error(err))
		return nil, err
	}

	if dashboard.Evolution == nil {
		dashboard.Evolution = []models.DailySales{}
	}
	if dashboard.TopProducts == nil {
		dashboard.TopProducts = []models.ProductSales{}
	}
	if dashboard.OrdersByStatus == nil {
		dashboard.OrdersByStatus = []models.StatusCount{}
	}
	return dashboard, nil
}

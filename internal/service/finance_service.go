package service

import (
	"context"
	"time"

	"walldecor-admin/internal/analytics"
	"walldecor-admin/internal/composer"
	"walldecor-admin/internal/ledger"
	"walldecor-admin/internal/model"
	"walldecor-admin/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// FinanceService serves the snapshot and every figure derived from it
type FinanceService interface {
	Snapshot(ctx context.Context) (*model.AppData, error)
	Meta() model.Meta
	Summary(ctx context.Context) (analytics.FinanceSummary, error)
	// Monthly uses the configured default window when months is 0
	Monthly(ctx context.Context, months int, kind model.ProductKind) (*analytics.MonthlyAnalytics, error)
	Dashboard(ctx context.Context) (*analytics.Dashboard, error)

	Settings(ctx context.Context) (model.AppSettings, error)
	SetCashOpeningBalance(ctx context.Context, amount decimal.Decimal, actor Actor) (model.AppSettings, error)
}

type FinanceConfig struct {
	Location          *time.Location
	DefaultMonths     int
	LowStockThreshold decimal.Decimal
	Now               func() time.Time
}

type financeService struct {
	repo repository.Repository
	cfg  FinanceConfig
	log  *zap.Logger
}

func NewFinanceService(repo repository.Repository, cfg FinanceConfig, log *zap.Logger) FinanceService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.DefaultMonths < 1 {
		cfg.DefaultMonths = analytics.DefaultMonths
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &financeService{repo: repo, cfg: cfg, log: log.Named("finance")}
}

func (s *financeService) Snapshot(ctx context.Context) (*model.AppData, error) {
	return s.repo.GetAll(ctx)
}

func (s *financeService) Meta() model.Meta {
	return s.repo.Meta()
}

func (s *financeService) Summary(ctx context.Context) (analytics.FinanceSummary, error) {
	data, err := s.repo.GetAll(ctx)
	if err != nil {
		return analytics.FinanceSummary{}, err
	}
	return analytics.ComputeFinanceSummary(data), nil
}

func (s *financeService) Monthly(ctx context.Context, months int, kind model.ProductKind) (*analytics.MonthlyAnalytics, error) {
	if months == 0 {
		months = s.cfg.DefaultMonths
	}
	if kind != "" && !kind.Valid() {
		return nil, composer.Invalid("kind", "kind must be FINISHED, RAW_MATERIAL or OTHER")
	}
	data, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	var filter ledger.ProductIDSet
	if kind != "" {
		filter = ledger.FilterByKind(data.Products, kind)
	}
	return analytics.ComputeMonthlyAnalytics(data, months, s.cfg.Now(), s.cfg.Location, filter)
}

func (s *financeService) Dashboard(ctx context.Context) (*analytics.Dashboard, error) {
	data, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.ComputeDashboard(data, s.cfg.Now(), s.cfg.Location, s.cfg.LowStockThreshold)
}

func (s *financeService) Settings(ctx context.Context) (model.AppSettings, error) {
	return s.repo.Settings().Get(ctx)
}

func (s *financeService) SetCashOpeningBalance(ctx context.Context, amount decimal.Decimal, actor Actor) (model.AppSettings, error) {
	settings, err := s.repo.Settings().SetCashOpeningBalance(ctx, amount)
	if err != nil {
		return model.AppSettings{}, err
	}
	s.log.Info("Cash opening balance set", append(actor.fields(), zap.String("amount", amount.String()))...)
	return settings, nil
}

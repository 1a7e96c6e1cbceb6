package service

import (
	"context"

	"walldecor-admin/internal/composer"
	"walldecor-admin/internal/model"
	"walldecor-admin/internal/repository"

	"go.uber.org/zap"
)

// TradingService records purchases, sales and production runs together with their stock movements
type TradingService interface {
	ListTransactions(ctx context.Context) ([]model.Transaction, error)
	RecordTransaction(ctx context.Context, in composer.TransactionInput, actor Actor) (*model.Transaction, error)
	RemoveTransaction(ctx context.Context, id string, actor Actor) error

	ListProductions(ctx context.Context) ([]model.Production, error)
	RecordProduction(ctx context.Context, in composer.ProductionInput, actor Actor) (*model.Production, error)
	RemoveProduction(ctx context.Context, id string, actor Actor) error
}

type tradingService struct {
	repo repository.Repository
	log  *zap.Logger
}

func NewTradingService(repo repository.Repository, log *zap.Logger) TradingService {
	return &tradingService{repo: repo, log: log.Named("trading")}
}

func (s *tradingService) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	return s.repo.Transactions().List(ctx)
}

func (s *tradingService) RecordTransaction(ctx context.Context, in composer.TransactionInput, actor Actor) (*model.Transaction, error) {
	in.ResponsibleEmployeeID = actor.orSelf(in.ResponsibleEmployeeID)
	tx, err := s.repo.Transactions().Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.log.Info("Transaction recorded", append(actor.fields(),
		zap.String("transaction_id", tx.ID),
		zap.String("type", string(tx.Type)),
		zap.String("amount", tx.Amount.String()),
		zap.Int("items", len(tx.Items)))...)
	return tx, nil
}

func (s *tradingService) RemoveTransaction(ctx context.Context, id string, actor Actor) error {
	if err := s.repo.Transactions().Remove(ctx, id); err != nil {
		return err
	}
	s.log.Info("Transaction removed with its movements", append(actor.fields(), zap.String("transaction_id", id))...)
	return nil
}

func (s *tradingService) ListProductions(ctx context.Context) ([]model.Production, error) {
	return s.repo.Productions().List(ctx)
}

func (s *tradingService) RecordProduction(ctx context.Context, in composer.ProductionInput, actor Actor) (*model.Production, error) {
	in.ResponsibleEmployeeID = actor.orSelf(in.ResponsibleEmployeeID)
	p, err := s.repo.Productions().Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.log.Info("Production recorded", append(actor.fields(),
		zap.String("production_id", p.ID),
		zap.String("raw_product_id", p.RawProductID),
		zap.String("finished_product_id", p.FinishedProductID))...)
	return p, nil
}

func (s *tradingService) RemoveProduction(ctx context.Context, id string, actor Actor) error {
	if err := s.repo.Productions().Remove(ctx, id); err != nil {
		return err
	}
	s.log.Info("Production removed with its movements", append(actor.fields(), zap.String("production_id", id))...)
	return nil
}

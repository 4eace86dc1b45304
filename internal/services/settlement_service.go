package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"caravanshare/internal/models"
	"caravanshare/internal/repositories/interfaces"
	"caravanshare/internal/utils"
	"caravanshare/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SettlementService pays hosts out for completed payments, net of the
// platform fee.
type SettlementService interface {
	SettleForHost(ctx context.Context, hostID primitive.ObjectID) (*models.Settlement, error)
	ListForHost(ctx context.Context, hostID primitive.ObjectID) ([]*models.Settlement, error)
}

type settlementService struct {
	settlementRepo interfaces.SettlementRepository
	paymentRepo    interfaces.PaymentRepository
	userRepo       interfaces.UserRepository
	locker         Locker
	tx             Transactor
	notifications  NotificationService
	opts           BookingOptions
	logger         *logger.Logger
}

func NewSettlementService(
	settlementRepo interfaces.SettlementRepository,
	paymentRepo interfaces.PaymentRepository,
	userRepo interfaces.UserRepository,
	locker Locker,
	tx Transactor,
	notifications NotificationService,
	opts BookingOptions,
	logger *logger.Logger,
) SettlementService {
	return &settlementService{
		settlementRepo: settlementRepo,
		paymentRepo:    paymentRepo,
		userRepo:       userRepo,
		locker:         locker,
		tx:             orDirect(tx),
		notifications:  notifications,
		opts:           opts.withDefaults(),
		logger:         logger,
	}
}

func (s *settlementService) SettleForHost(ctx context.Context, hostID primitive.ObjectID) (*models.Settlement, error) {
	host, err := s.userRepo.GetByID(ctx, hostID)
	if err != nil && !errors.Is(err, utils.ErrNotFound) {
		return nil, err
	}
	if err != nil || !host.IsHost {
		return nil, utils.NewNotFoundError("host")
	}

	unlock, err := acquire(ctx, s.locker, utils.LockSettlementPrefix+hostID.Hex(), s.opts.LockTTL)
	if err != nil {
		return nil, err
	}
	defer unlock()

	payments, err := s.paymentRepo.ListUnsettledByHost(ctx, hostID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unsettled payments: %w", err)
	}
	if len(payments) == 0 {
		return nil, utils.NewInvalidStateError("no unsettled payments")
	}

	settlement := &models.Settlement{
		ID:         primitive.NewObjectID(),
		HostID:     hostID,
		Currency:   s.opts.Currency,
		PaymentIDs: make([]primitive.ObjectID, 0, len(payments)),
		CreatedAt:  s.opts.Now(),
	}
	for _, p := range payments {
		settlement.GrossAmount += p.Amount
		settlement.PlatformFee += p.PlatformFee
		settlement.PaymentIDs = append(settlement.PaymentIDs, p.ID)
	}
	settlement.GrossAmount = math.Round(settlement.GrossAmount)
	settlement.PlatformFee = math.Round(settlement.PlatformFee)
	settlement.Amount = settlement.GrossAmount - settlement.PlatformFee

	marked := false
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		claimed, err := s.paymentRepo.MarkSettled(ctx, settlement.PaymentIDs, settlement.ID)
		if err != nil {
			return err
		}
		marked = claimed > 0
		if claimed != int64(len(settlement.PaymentIDs)) {
			return utils.NewConflictError("payments changed while settling, try again")
		}
		return s.settlementRepo.Create(ctx, settlement)
	})
	if err != nil {
		// Without a transaction claimed payments stay tied to a settlement
		// that was never written.
		if marked {
			if clearErr := s.paymentRepo.ClearSettlement(ctx, settlement.ID); clearErr != nil {
				s.logger.WithError(clearErr).WithUserID(hostID).Error("Failed to release settled payments")
			}
		}
		return nil, err
	}

	unlock()

	s.logger.WithUserID(hostID).WithFields(map[string]interface{}{
		"settlement_id": settlement.ID.Hex(),
		"payments":      len(settlement.PaymentIDs),
		"amount":        settlement.Amount,
		"platform_fee":  settlement.PlatformFee,
		"event":         utils.EventSettlementCreated,
	}).Info("Settlement created")
	s.notifications.Notify(ctx, &models.Notification{
		UserID:  hostID,
		Type:    models.NotificationSettlementCreated,
		Title:   "Payout settled",
		Message: fmt.Sprintf("%.0f %s was settled for %d payments.", settlement.Amount, settlement.Currency, len(settlement.PaymentIDs)),
		Data: map[string]interface{}{
			"settlement_id": settlement.ID.Hex(),
			"amount":        settlement.Amount,
		},
	})

	return settlement, nil
}

func (s *settlementService) ListForHost(ctx context.Context, hostID primitive.ObjectID) ([]*models.Settlement, error) {
	return s.settlementRepo.ListByHost(ctx, hostID)
}

package services

import (
	"context"
	"fmt"

	"coinflip/domain/entities"
	"coinflip/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// discountService picks the fee tier a new wager snapshots
type discountService struct {
	ownershipChecker interfaces.OwnershipChecker
	collectionID     string
}

// NewDiscountService creates a discount service. An empty collectionID disables the discount tier.
func NewDiscountService(ownershipChecker interfaces.OwnershipChecker, collectionID string) interfaces.DiscountService {
	return &discountService{
		ownershipChecker: ownershipChecker,
		collectionID:     collectionID,
	}
}

// SelectFeeRate returns the discount rate only when the player claims it and the
// ownership predicate confirms a qualifying item; every other case gets the base rate.
func (s *discountService) SelectFeeRate(ctx context.Context, treasury *entities.HouseTreasury, player string, claimDiscount bool) (int64, bool, error) {
	if !claimDiscount {
		return treasury.BaseFeeRateBP, false, nil
	}
	if s.collectionID == "" || s.ownershipChecker == nil {
		log.WithField("player", player).Debug("Discount claimed but no qualifying collection configured")
		return treasury.BaseFeeRateBP, false, nil
	}

	qualifies, err := s.ownershipChecker.HasQualifyingItem(ctx, player, s.collectionID)
	if err != nil {
		return 0, false, fmt.Errorf("failed to check qualifying item: %w", err)
	}
	if !qualifies {
		log.WithFields(log.Fields{
			"player":       player,
			"collectionID": s.collectionID,
		}).Info("Discount claimed without a qualifying item, using base rate")
		return treasury.BaseFeeRateBP, false, nil
	}

	return treasury.DiscountFeeRateBP, true, nil
}

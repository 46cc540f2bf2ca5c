package application_test

import (
	"context"
	"testing"

	"coinflip/application"
	"coinflip/domain/entities"
	"coinflip/domain/interfaces"
	"coinflip/domain/services"
	"coinflip/infrastructure"
	"coinflip/infrastructure/crypto"
	"coinflip/repository/testutil"

	"github.com/stretchr/testify/require"
)

const (
	testTreasuryID   = int64(1)
	testHouse        = "house"
	testCollectionID = "founders"
	testDisputeDelay = int64(7)
)

// settlementFixture is a full stack over a throwaway database
type settlementFixture struct {
	ctx      context.Context
	factory  *infrastructure.UnitOfWorkFactory
	deps     application.Dependencies
	signer   *crypto.BLSSigner
	wagers   *application.WagerHandlerImpl
	treasury *application.TreasuryHandlerImpl
	accounts *application.AccountHandlerImpl
}

func newSettlementFixture(t *testing.T) *settlementFixture {
	t.Helper()

	testDB := testutil.SetupTestDatabase(t)
	factory := infrastructure.NewUnitOfWorkFactory(testDB.DB, infrastructure.NewNoopEventPublisher())

	deps := application.Dependencies{
		TreasuryID:         testTreasuryID,
		DisputeDelayEpochs: testDisputeDelay,
		CollectionID:       testCollectionID,
		Oracle:             services.NewRandomnessOracle(crypto.NewBLSVerifier(), crypto.NewBlake2bDigester(), services.OutcomeDerivationHashed),
		ValidKey:           crypto.ValidPublicKey,
	}

	return &settlementFixture{
		ctx:      context.Background(),
		factory:  factory,
		deps:     deps,
		signer:   crypto.GenerateBLSSigner(),
		wagers:   application.NewWagerHandler(factory, deps),
		treasury: application.NewTreasuryHandler(factory, deps),
		accounts: application.NewAccountHandler(factory, deps),
	}
}

// initTreasury sets up the treasury used across tests and funds it with 100000
func (f *settlementFixture) initTreasury(t *testing.T) {
	t.Helper()

	_, err := f.treasury.InitializeTreasury(f.ctx, interfaces.InitializeTreasuryParams{
		HouseIdentity:     testHouse,
		VerificationKey:   f.signer.PublicKey(),
		MinStake:          1000,
		MaxStake:          50000,
		BaseFeeRateBP:     100,
		DiscountFeeRateBP: 50,
		FeeBasis:          entities.FeeBasisPlayerStake,
	})
	require.NoError(t, err)

	_, err = f.treasury.TopUp(f.ctx, testHouse, 100000)
	require.NoError(t, err)
}

func (f *settlementFixture) fundPlayer(t *testing.T, player string, amount int64) {
	t.Helper()
	_, err := f.accounts.Deposit(f.ctx, player, amount)
	require.NoError(t, err)
}

func (f *settlementFixture) openWager(t *testing.T, player string, guess int, stake int64) *entities.Wager {
	t.Helper()
	wager, err := f.wagers.CreateWager(f.ctx, interfaces.CreateWagerRequest{
		Player: player,
		Guess:  guess,
		Seed:   []byte("seed-" + player),
		Stake:  stake,
	})
	require.NoError(t, err)
	return wager
}

func (f *settlementFixture) proofFor(t *testing.T, wager *entities.Wager) []byte {
	t.Helper()
	proof, err := f.signer.Sign(wager.RandomnessMessage())
	require.NoError(t, err)
	return proof
}

func (f *settlementFixture) requireBalanced(t *testing.T) *entities.ConservationReport {
	t.Helper()
	report, err := f.treasury.ConservationReport(f.ctx, testHouse)
	require.NoError(t, err)
	require.True(t, report.IsBalanced(), "conservation violated: %+v", report)
	return report
}

package application_test

import (
	"errors"
	"sync"
	"testing"

	"coinflip/application"
	"coinflip/domain/entities"
	"coinflip/domain/interfaces"
	"coinflip/infrastructure/crypto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettlement_ResolveEndToEnd(t *testing.T) {
	f := newSettlementFixture(t)
	f.initTreasury(t)
	f.fundPlayer(t, "alice", 50000)

	wager := f.openWager(t, "alice", 0, 10000)
	assert.Equal(t, int64(20000), wager.TotalStake)
	assert.Equal(t, int64(100), wager.FeeRateBP)
	f.requireBalanced(t)

	proof := f.proofFor(t, wager)
	expected := f.deps.Oracle.Verify(wager.ID, wager.PlayerSeed, proof, f.signer.PublicKey(), wager.Guess)
	require.True(t, expected.Valid)

	record, err := f.wagers.ResolveWager(f.ctx, wager.ID, proof)
	require.NoError(t, err)
	assert.Equal(t, expected.PlayerWins, record.Won)
	assert.True(t, record.IsBalanced())

	account, err := f.accounts.GetAccount(f.ctx, "alice")
	require.NoError(t, err)
	treasury, err := f.treasury.GetTreasury(f.ctx)
	require.NoError(t, err)

	if record.Won {
		assert.Equal(t, int64(100), record.FeeAmount)
		assert.Equal(t, int64(19900), record.PlayerPayout)
		assert.Equal(t, int64(59900), account.Balance)
		assert.Equal(t, int64(90000), treasury.AvailableBalance)
		assert.Equal(t, int64(100), treasury.AccumulatedFees)
	} else {
		assert.Equal(t, int64(20000), record.HouseRelease)
		assert.Equal(t, int64(40000), account.Balance)
		assert.Equal(t, int64(110000), treasury.AvailableBalance)
		assert.Zero(t, treasury.AccumulatedFees)
	}

	settled, err := f.wagers.GetWager(f.ctx, wager.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.WagerStatusResolved, settled.Status)
	assert.Zero(t, settled.TotalStake)

	outcome, err := f.wagers.GetOutcome(f.ctx, wager.ID)
	require.NoError(t, err)
	assert.Equal(t, record.Won, outcome.Won)

	report := f.requireBalanced(t)
	assert.Zero(t, report.OpenEscrow)
	assert.Equal(t, int64(150000), report.TotalDeposited)

	_, err = f.wagers.ResolveWager(f.ctx, wager.ID, proof)
	assert.ErrorIs(t, err, entities.ErrAlreadySettled)
}

func TestSettlement_ForfeitAfterDisputeDelay(t *testing.T) {
	f := newSettlementFixture(t)
	f.initTreasury(t)
	f.fundPlayer(t, "alice", 10000)

	wager := f.openWager(t, "alice", 1, 10000)

	_, err := f.treasury.AdvanceEpoch(f.ctx, testHouse, testDisputeDelay-1)
	require.NoError(t, err)
	_, err = f.wagers.ForfeitWager(f.ctx, wager.ID)
	assert.ErrorIs(t, err, entities.ErrDisputeTooEarly)

	_, err = f.treasury.AdvanceEpoch(f.ctx, testHouse, 1)
	require.NoError(t, err)
	record, err := f.wagers.ForfeitWager(f.ctx, wager.ID)
	require.NoError(t, err)
	assert.True(t, record.Forfeited)
	assert.True(t, record.Won)
	assert.Equal(t, int64(20000), record.PlayerPayout)
	assert.Zero(t, record.FeeAmount)

	account, err := f.accounts.GetAccount(f.ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(20000), account.Balance)

	_, err = f.wagers.ResolveWager(f.ctx, wager.ID, f.proofFor(t, wager))
	assert.ErrorIs(t, err, entities.ErrAlreadySettled)

	f.requireBalanced(t)
}

func TestSettlement_FailedCreateLeavesNoTrace(t *testing.T) {
	f := newSettlementFixture(t)
	f.initTreasury(t)
	f.fundPlayer(t, "alice", 60000)

	// An empty house pool cannot match any stake
	_, err := f.treasury.WithdrawBalance(f.ctx, testHouse)
	require.NoError(t, err)

	_, err = f.wagers.CreateWager(f.ctx, interfaces.CreateWagerRequest{Player: "alice", Guess: 1, Seed: []byte("s"), Stake: 10000})
	assert.ErrorIs(t, err, entities.ErrInsufficientHouseBalance)

	account, err := f.accounts.GetAccount(f.ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(60000), account.Balance)

	open, err := f.wagers.ListOpenWagers(f.ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, open)

	f.requireBalanced(t)
}

func TestSettlement_InvalidProofChangesNothing(t *testing.T) {
	f := newSettlementFixture(t)
	f.initTreasury(t)
	f.fundPlayer(t, "alice", 10000)
	wager := f.openWager(t, "alice", 1, 10000)

	forged, err := f.signer.Sign([]byte("some other message"))
	require.NoError(t, err)

	_, err = f.wagers.ResolveWager(f.ctx, wager.ID, forged)
	assert.ErrorIs(t, err, entities.ErrInvalidProof)

	still, err := f.wagers.GetWager(f.ctx, wager.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.WagerStatusOpen, still.Status)
	assert.Equal(t, int64(20000), still.TotalStake)
}

func TestSettlement_ExtendedProofRejected(t *testing.T) {
	f := newSettlementFixture(t)
	f.initTreasury(t)
	f.fundPlayer(t, "alice", 10000)
	wager := f.openWager(t, "alice", 1, 10000)
	proof := f.proofFor(t, wager)

	for b := 0; b < 4; b++ {
		extended := append(append([]byte{}, proof...), byte(b))

		_, err := f.wagers.ResolveWager(f.ctx, wager.ID, extended)
		assert.ErrorIs(t, err, entities.ErrInvalidProof, "suffix %d", b)

		result := f.wagers.VerifyOutcome(application.VerifyOutcomeRequest{
			WagerID:         wager.ID,
			Seed:            wager.PlayerSeed,
			Proof:           extended,
			VerificationKey: wager.VerificationKey,
			Guess:           wager.Guess,
		})
		assert.False(t, result.Valid, "suffix %d", b)
	}

	still, err := f.wagers.GetWager(f.ctx, wager.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.WagerStatusOpen, still.Status)
	assert.Equal(t, int64(20000), still.TotalStake)

	// The canonical proof still settles it
	_, err = f.wagers.ResolveWager(f.ctx, wager.ID, proof)
	require.NoError(t, err)
	f.requireBalanced(t)
}

func TestSettlement_ConcurrentResolveSettlesOnce(t *testing.T) {
	f := newSettlementFixture(t)
	f.initTreasury(t)
	f.fundPlayer(t, "alice", 10000)
	wager := f.openWager(t, "alice", 1, 10000)
	proof := f.proofFor(t, wager)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.wagers.ResolveWager(f.ctx, wager.ID, proof)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.ErrorIs(t, err, entities.ErrAlreadySettled)
	}
	assert.Equal(t, 1, successes)
	f.requireBalanced(t)
}

func TestSettlement_ResolveRacesForfeit(t *testing.T) {
	f := newSettlementFixture(t)
	f.initTreasury(t)
	f.fundPlayer(t, "alice", 10000)
	wager := f.openWager(t, "alice", 1, 10000)
	proof := f.proofFor(t, wager)

	_, err := f.treasury.AdvanceEpoch(f.ctx, testHouse, testDisputeDelay)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var resolveErr, forfeitErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, resolveErr = f.wagers.ResolveWager(f.ctx, wager.ID, proof)
	}()
	go func() {
		defer wg.Done()
		_, forfeitErr = f.wagers.ForfeitWager(f.ctx, wager.ID)
	}()
	wg.Wait()

	// Exactly one transition wins
	assert.True(t, (resolveErr == nil) != (forfeitErr == nil), "resolve=%v forfeit=%v", resolveErr, forfeitErr)
	for _, err := range []error{resolveErr, forfeitErr} {
		if err != nil {
			assert.True(t, errors.Is(err, entities.ErrAlreadySettled), "unexpected error %v", err)
		}
	}
	f.requireBalanced(t)
}

func TestSettlement_DiscountTier(t *testing.T) {
	f := newSettlementFixture(t)
	f.initTreasury(t)
	f.fundPlayer(t, "alice", 20000)

	err := f.accounts.RegisterQualifyingItem(f.ctx, "alice", &entities.QualifyingItem{Owner: "alice", CollectionID: testCollectionID, ItemID: "7"})
	assert.ErrorIs(t, err, entities.ErrUnauthorized)

	require.NoError(t, f.accounts.RegisterQualifyingItem(f.ctx, testHouse, &entities.QualifyingItem{Owner: "alice", CollectionID: testCollectionID, ItemID: "7"}))

	discounted, err := f.wagers.CreateWager(f.ctx, interfaces.CreateWagerRequest{Player: "alice", Guess: 0, Seed: []byte("a"), Stake: 5000, ClaimDiscount: true})
	require.NoError(t, err)
	assert.Equal(t, int64(50), discounted.FeeRateBP)
	assert.True(t, discounted.Discounted)

	unclaimed, err := f.wagers.CreateWager(f.ctx, interfaces.CreateWagerRequest{Player: "alice", Guess: 0, Seed: []byte("b"), Stake: 5000})
	require.NoError(t, err)
	assert.Equal(t, int64(100), unclaimed.FeeRateBP)
}

func TestSettlement_ConfigChangesDoNotTouchOpenWagers(t *testing.T) {
	f := newSettlementFixture(t)
	f.initTreasury(t)
	f.fundPlayer(t, "alice", 10000)
	wager := f.openWager(t, "alice", 0, 10000)
	proof := f.proofFor(t, wager)

	require.NoError(t, f.treasury.SetFeeRates(f.ctx, testHouse, 500, 250))
	require.NoError(t, f.treasury.RotateVerificationKey(f.ctx, testHouse, crypto.GenerateBLSSigner().PublicKey()))

	record, err := f.wagers.ResolveWager(f.ctx, wager.ID, proof)
	require.NoError(t, err)
	if record.Won {
		assert.Equal(t, int64(100), record.FeeAmount)
	} else {
		assert.Zero(t, record.FeeAmount)
	}
	f.requireBalanced(t)
}

func TestSettlement_AdminRequiresHouse(t *testing.T) {
	f := newSettlementFixture(t)
	f.initTreasury(t)

	_, err := f.treasury.TopUp(f.ctx, "mallory", 1000)
	assert.ErrorIs(t, err, entities.ErrUnauthorized)
	_, err = f.treasury.WithdrawBalance(f.ctx, "mallory")
	assert.ErrorIs(t, err, entities.ErrUnauthorized)
	_, err = f.treasury.ClaimFees(f.ctx, "mallory")
	assert.ErrorIs(t, err, entities.ErrUnauthorized)
	assert.ErrorIs(t, f.treasury.SetFeeRates(f.ctx, "mallory", 10001, 0), entities.ErrUnauthorized)
	assert.ErrorIs(t, f.treasury.RotateVerificationKey(f.ctx, "mallory", []byte("junk")), entities.ErrUnauthorized)
	_, err = f.treasury.AdvanceEpoch(f.ctx, "mallory", 1)
	assert.ErrorIs(t, err, entities.ErrUnauthorized)
	_, err = f.treasury.ConservationReport(f.ctx, "mallory")
	assert.ErrorIs(t, err, entities.ErrUnauthorized)

	assert.ErrorIs(t, f.treasury.RotateVerificationKey(f.ctx, testHouse, []byte("junk")), entities.ErrInvalidVerificationKey)
	assert.ErrorIs(t, f.treasury.SetFeeRates(f.ctx, testHouse, 10001, 0), entities.ErrRateTooHigh)

	treasury, err := f.treasury.GetTreasury(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), treasury.AvailableBalance)
}

func TestSettlement_UnknownWager(t *testing.T) {
	f := newSettlementFixture(t)
	f.initTreasury(t)

	_, err := f.wagers.GetWager(f.ctx, uuid.New())
	assert.ErrorIs(t, err, entities.ErrWagerNotFound)
	_, err = f.wagers.ForfeitWager(f.ctx, uuid.New())
	assert.ErrorIs(t, err, entities.ErrWagerNotFound)
}

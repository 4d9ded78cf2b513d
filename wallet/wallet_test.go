// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wallet

import (
	"errors"
	"testing"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/fundraise/bank"
	"github.com/luxfi/fundraise/contract"
)

type failingContract struct {
	err error
}

func (c *failingContract) Call(ids.ShortID, uint64, []byte) error {
	return c.err
}

type testEnv struct {
	bank   *bank.Bank
	router *contract.Registry
	wallet *Wallet
	owners []ids.ShortID
}

func newTestEnv(t *testing.T, numOwners int, required uint32) *testEnv {
	require := require.New(t)

	db := memdb.New()
	env := &testEnv{
		bank:   bank.New(prefixdb.New([]byte("bank"), db)),
		router: contract.NewRegistry(),
		owners: make([]ids.ShortID, numOwners),
	}
	for i := range env.owners {
		env.owners[i] = ids.GenerateTestShortID()
	}

	var err error
	env.wallet, err = New(
		prefixdb.New([]byte("wallet"), db),
		ids.GenerateTestShortID(),
		env.owners,
		required,
		env.bank,
		env.router,
		log.NoLog{},
		metric.NewRegistry(),
	)
	require.NoError(err)
	require.NoError(env.router.Register(env.wallet.Address(), env.wallet))
	return env
}

// governance builds a self-targeted payload and fails the test on error.
func governance(t *testing.T, call governanceCall) []byte {
	payload, err := EncodeGovernanceCall(call)
	require.NoError(t, err)
	return payload
}

func TestNewValidation(t *testing.T) {
	require := require.New(t)

	bnk := bank.New(memdb.New())
	router := contract.NewRegistry()
	owner := ids.GenerateTestShortID()

	tests := []struct {
		name     string
		owners   []ids.ShortID
		required uint32
		err      error
	}{
		{
			name:     "zero requirement",
			owners:   []ids.ShortID{owner},
			required: 0,
			err:      ErrInvalidRequirement,
		},
		{
			name:     "requirement above owner count",
			owners:   []ids.ShortID{owner},
			required: 2,
			err:      ErrInvalidRequirement,
		},
		{
			name:     "no owners",
			owners:   nil,
			required: 1,
			err:      ErrInvalidRequirement,
		},
		{
			name:     "nil owner",
			owners:   []ids.ShortID{ids.ShortEmpty},
			required: 1,
			err:      ErrNilOwner,
		},
		{
			name:     "duplicate owner",
			owners:   []ids.ShortID{owner, owner},
			required: 1,
			err:      ErrOwnerExists,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := New(
				memdb.New(),
				ids.GenerateTestShortID(),
				test.owners,
				test.required,
				bnk,
				router,
				log.NoLog{},
				metric.NewRegistry(),
			)
			require.ErrorIs(err, test.err)
		})
	}
}

func TestSubmitExecutesAtQuorum(t *testing.T) {
	require := require.New(t)
	env := newTestEnv(t, 3, 2)

	require.NoError(env.bank.Credit(env.wallet.Address(), 1000))
	recipient := ids.GenerateTestShortID()

	id, err := env.wallet.Submit(env.owners[0], recipient, 400, nil)
	require.NoError(err)
	require.Zero(id)

	// One confirmation is below quorum, so nothing moved yet.
	tx, err := env.wallet.GetTransaction(id)
	require.NoError(err)
	require.False(tx.Executed)

	count, err := env.wallet.ConfirmationCount(id)
	require.NoError(err)
	require.Equal(uint32(1), count)

	require.NoError(env.wallet.Confirm(env.owners[1], id))

	tx, err = env.wallet.GetTransaction(id)
	require.NoError(err)
	require.True(tx.Executed)

	balance, err := env.bank.Balance(recipient)
	require.NoError(err)
	require.Equal(uint64(400), balance)

	walletBalance, err := env.wallet.Balance()
	require.NoError(err)
	require.Equal(uint64(600), walletBalance)
}

func TestSubmitValidation(t *testing.T) {
	require := require.New(t)
	env := newTestEnv(t, 2, 2)

	_, err := env.wallet.Submit(ids.GenerateTestShortID(), ids.GenerateTestShortID(), 0, nil)
	require.ErrorIs(err, ErrNotOwner)

	_, err = env.wallet.Submit(env.owners[0], ids.ShortEmpty, 0, nil)
	require.ErrorIs(err, ErrNilDestination)
}

func TestSequentialIDs(t *testing.T) {
	require := require.New(t)
	env := newTestEnv(t, 2, 2)

	for want := uint64(0); want < 5; want++ {
		id, err := env.wallet.Submit(env.owners[0], ids.GenerateTestShortID(), 0, nil)
		require.NoError(err)
		require.Equal(want, id)
	}
}

func TestConfirmValidation(t *testing.T) {
	require := require.New(t)
	env := newTestEnv(t, 3, 2)

	id, err := env.wallet.Submit(env.owners[0], ids.GenerateTestShortID(), 0, nil)
	require.NoError(err)

	err = env.wallet.Confirm(ids.GenerateTestShortID(), id)
	require.ErrorIs(err, ErrNotOwner)

	err = env.wallet.Confirm(env.owners[1], id+1)
	require.ErrorIs(err, ErrTxNotFound)

	// The submitter was auto-confirmed.
	err = env.wallet.Confirm(env.owners[0], id)
	require.ErrorIs(err, ErrAlreadyConfirmed)

	require.NoError(env.wallet.Confirm(env.owners[1], id))

	err = env.wallet.Confirm(env.owners[2], id)
	require.ErrorIs(err, ErrAlreadyExecuted)
}

func TestRevokeDropsBelowQuorum(t *testing.T) {
	require := require.New(t)
	env := newTestEnv(t, 3, 2)

	id, err := env.wallet.Submit(env.owners[0], ids.GenerateTestShortID(), 0, nil)
	require.NoError(err)

	require.NoError(env.wallet.Revoke(env.owners[0], id))

	count, err := env.wallet.ConfirmationCount(id)
	require.NoError(err)
	require.Zero(count)

	_, err = env.wallet.Execute(id)
	require.ErrorIs(err, ErrNotEnoughConfirmations)

	// Re-confirming after a revoke is allowed.
	require.NoError(env.wallet.Confirm(env.owners[0], id))
	require.NoError(env.wallet.Confirm(env.owners[1], id))

	tx, err := env.wallet.GetTransaction(id)
	require.NoError(err)
	require.True(tx.Executed)
}

func TestRevokeValidation(t *testing.T) {
	require := require.New(t)
	env := newTestEnv(t, 3, 2)

	id, err := env.wallet.Submit(env.owners[0], ids.GenerateTestShortID(), 0, nil)
	require.NoError(err)

	err = env.wallet.Revoke(ids.GenerateTestShortID(), id)
	require.ErrorIs(err, ErrNotOwner)

	err = env.wallet.Revoke(env.owners[1], id)
	require.ErrorIs(err, ErrNotConfirmed)

	err = env.wallet.Revoke(env.owners[0], id+1)
	require.ErrorIs(err, ErrTxNotFound)

	require.NoError(env.wallet.Confirm(env.owners[1], id))

	err = env.wallet.Revoke(env.owners[0], id)
	require.ErrorIs(err, ErrAlreadyExecuted)
}

func TestExecuteIdempotence(t *testing.T) {
	require := require.New(t)
	env := newTestEnv(t, 2, 2)

	failing := &failingContract{}
	failingAddr := ids.GenerateTestShortID()
	require.NoError(env.router.Register(failingAddr, failing))

	id, err := env.wallet.Submit(env.owners[0], failingAddr, 0, []byte{1, 2, 3})
	require.NoError(err)
	require.NoError(env.wallet.Confirm(env.owners[1], id))

	tx, err := env.wallet.GetTransaction(id)
	require.NoError(err)
	require.True(tx.Executed)

	_, err = env.wallet.Execute(id)
	require.ErrorIs(err, ErrAlreadyExecuted)
}

func TestDownstreamFailureStaysExecuted(t *testing.T) {
	require := require.New(t)
	env := newTestEnv(t, 2, 1)

	errCallFailed := errors.New("call failed")
	failing := &failingContract{err: errCallFailed}
	failingAddr := ids.GenerateTestShortID()
	require.NoError(env.router.Register(failingAddr, failing))

	// Auto-execution on submit swallows the downstream failure.
	id, err := env.wallet.Submit(env.owners[0], failingAddr, 0, []byte{1})
	require.NoError(err)

	tx, err := env.wallet.GetTransaction(id)
	require.NoError(err)
	require.True(tx.Executed)

	// The call never runs again, even though it failed.
	_, err = env.wallet.Execute(id)
	require.ErrorIs(err, ErrAlreadyExecuted)
}

func TestExecuteReportsCallError(t *testing.T) {
	require := require.New(t)
	env := newTestEnv(t, 3, 2)
	a, b, c := env.owners[0], env.owners[1], env.owners[2]

	errCallFailed := errors.New("call failed")
	failing := &failingContract{err: errCallFailed}
	failingAddr := ids.GenerateTestShortID()
	require.NoError(env.router.Register(failingAddr, failing))

	// A confirms the call by submitting it, then is removed, leaving the
	// transaction below quorum even after B confirms.
	id, err := env.wallet.Submit(a, failingAddr, 0, []byte{1})
	require.NoError(err)

	removeID, err := env.wallet.Submit(b, env.wallet.Address(), 0, governance(t, &RemoveOwnerCall{Owner: a}))
	require.NoError(err)
	require.NoError(env.wallet.Confirm(c, removeID))

	require.NoError(env.wallet.Confirm(b, id))
	tx, err := env.wallet.GetTransaction(id)
	require.NoError(err)
	require.False(tx.Executed)

	// Re-admitting A revives its confirmation; the transaction reaches
	// quorum without an execution attempt, so a manual retry fires it.
	addID, err := env.wallet.Submit(b, env.wallet.Address(), 0, governance(t, &AddOwnerCall{Owner: a}))
	require.NoError(err)
	require.NoError(env.wallet.Confirm(c, addID))

	result, err := env.wallet.Execute(id)
	require.NoError(err)
	require.ErrorIs(result.Err, errCallFailed)

	tx, err = env.wallet.GetTransaction(id)
	require.NoError(err)
	require.True(tx.Executed)
}

func TestExecuteByNonOwner(t *testing.T) {
	require := require.New(t)
	env := newTestEnv(t, 3, 2)

	require.NoError(env.bank.Credit(env.wallet.Address(), 100))
	recipient := ids.GenerateTestShortID()

	id, err := env.wallet.Submit(env.owners[0], recipient, 100, nil)
	require.NoError(err)
	require.NoError(env.wallet.Confirm(env.owners[1], id))

	// Already executed on the confirm, so a third-party retry fails.
	_, err = env.wallet.Execute(id)
	require.ErrorIs(err, ErrAlreadyExecuted)
}

func TestChangeRequirementToOne(t *testing.T) {
	require := require.New(t)
	env := newTestEnv(t, 3, 2)

	payload := governance(t, &ChangeRequirementCall{Required: 1})
	id, err := env.wallet.Submit(env.owners[0], env.wallet.Address(), 0, payload)
	require.NoError(err)
	require.NoError(env.wallet.Confirm(env.owners[1], id))
	require.Equal(uint32(1), env.wallet.Required())

	// With quorum 1 the auto-confirmation alone executes the submission.
	require.NoError(env.bank.Credit(env.wallet.Address(), 50))
	recipient := ids.GenerateTestShortID()

	id, err = env.wallet.Submit(env.owners[2], recipient, 50, nil)
	require.NoError(err)

	tx, err := env.wallet.GetTransaction(id)
	require.NoError(err)
	require.True(tx.Executed)

	balance, err := env.bank.Balance(recipient)
	require.NoError(err)
	require.Equal(uint64(50), balance)
}

func TestAddOwner(t *testing.T) {
	require := require.New(t)
	env := newTestEnv(t, 2, 2)

	newOwner := ids.GenerateTestShortID()
	payload := governance(t, &AddOwnerCall{Owner: newOwner})

	id, err := env.wallet.Submit(env.owners[0], env.wallet.Address(), 0, payload)
	require.NoError(err)
	require.False(env.wallet.IsOwner(newOwner))

	require.NoError(env.wallet.Confirm(env.owners[1], id))
	require.True(env.wallet.IsOwner(newOwner))
	require.Len(env.wallet.Owners(), 3)
}

func TestRemoveOwnerClampsRequirement(t *testing.T) {
	require := require.New(t)
	env := newTestEnv(t, 3, 3)

	payload := governance(t, &RemoveOwnerCall{Owner: env.owners[2]})
	id, err := env.wallet.Submit(env.owners[0], env.wallet.Address(), 0, payload)
	require.NoError(err)
	require.NoError(env.wallet.Confirm(env.owners[1], id))
	require.NoError(env.wallet.Confirm(env.owners[2], id))

	require.False(env.wallet.IsOwner(env.owners[2]))
	require.Equal(uint32(2), env.wallet.Required())
}

func TestReplaceOwner(t *testing.T) {
	require := require.New(t)
	env := newTestEnv(t, 2, 2)

	newOwner := ids.GenerateTestShortID()
	payload := governance(t, &ReplaceOwnerCall{
		OldOwner: env.owners[1],
		NewOwner: newOwner,
	})

	id, err := env.wallet.Submit(env.owners[0], env.wallet.Address(), 0, payload)
	require.NoError(err)
	require.NoError(env.wallet.Confirm(env.owners[1], id))

	require.False(env.wallet.IsOwner(env.owners[1]))
	require.True(env.wallet.IsOwner(newOwner))
	require.Equal(uint32(2), env.wallet.Required())
}

func TestRemovedOwnerConfirmationsDontCount(t *testing.T) {
	require := require.New(t)
	env := newTestEnv(t, 3, 2)

	// owners[0] confirms a transfer, then is removed before quorum.
	transferID, err := env.wallet.Submit(env.owners[0], ids.GenerateTestShortID(), 0, nil)
	require.NoError(err)

	payload := governance(t, &RemoveOwnerCall{Owner: env.owners[0]})
	removeID, err := env.wallet.Submit(env.owners[1], env.wallet.Address(), 0, payload)
	require.NoError(err)
	require.NoError(env.wallet.Confirm(env.owners[2], removeID))
	require.False(env.wallet.IsOwner(env.owners[0]))

	count, err := env.wallet.ConfirmationCount(transferID)
	require.NoError(err)
	require.Zero(count)

	confirmers, err := env.wallet.Confirmers(transferID)
	require.NoError(err)
	require.Empty(confirmers)
}

func TestGovernanceRequiresSelfCall(t *testing.T) {
	require := require.New(t)
	env := newTestEnv(t, 2, 2)

	payload := governance(t, &AddOwnerCall{Owner: ids.GenerateTestShortID()})

	// A payload-bearing call from any other party is rejected outright.
	err := env.router.Call(ids.GenerateTestShortID(), env.wallet.Address(), 0, payload)
	require.ErrorIs(err, ErrNotSelf)
	require.Len(env.wallet.Owners(), 2)
}

func TestGovernanceFailureCapturedAsOutcome(t *testing.T) {
	require := require.New(t)
	env := newTestEnv(t, 2, 1)

	// Adding an existing owner fails downstream, but the transaction is
	// executed and the owner set is untouched.
	payload := governance(t, &AddOwnerCall{Owner: env.owners[1]})
	id, err := env.wallet.Submit(env.owners[0], env.wallet.Address(), 0, payload)
	require.NoError(err)

	tx, err := env.wallet.GetTransaction(id)
	require.NoError(err)
	require.True(tx.Executed)
	require.Len(env.wallet.Owners(), 2)
}

func TestReceive(t *testing.T) {
	require := require.New(t)
	env := newTestEnv(t, 2, 2)

	sender := ids.GenerateTestShortID()
	require.NoError(env.bank.Credit(sender, 75))

	// Inbound transfers route through the registry's plain receive path.
	require.NoError(env.router.Call(sender, env.wallet.Address(), 75, nil))

	balance, err := env.wallet.Balance()
	require.NoError(err)
	require.Equal(uint64(75), balance)
}

func TestListAndCount(t *testing.T) {
	require := require.New(t)
	env := newTestEnv(t, 2, 2)

	// Five transactions; execute the even ones.
	for i := 0; i < 5; i++ {
		id, err := env.wallet.Submit(env.owners[0], ids.GenerateTestShortID(), 0, nil)
		require.NoError(err)
		if i%2 == 0 {
			require.NoError(env.wallet.Confirm(env.owners[1], id))
		}
	}

	count, err := env.wallet.TransactionCount(true, true)
	require.NoError(err)
	require.Equal(uint64(5), count)

	count, err = env.wallet.TransactionCount(false, true)
	require.NoError(err)
	require.Equal(uint64(3), count)

	count, err = env.wallet.TransactionCount(true, false)
	require.NoError(err)
	require.Equal(uint64(2), count)

	executed, err := env.wallet.TransactionIDs(0, MaxPageSize, false, true)
	require.NoError(err)
	require.Equal([]uint64{0, 2, 4}, executed)

	pending, err := env.wallet.TransactionIDs(0, MaxPageSize, true, false)
	require.NoError(err)
	require.Equal([]uint64{1, 3}, pending)

	// Offset indexes into the filtered sequence.
	tail, err := env.wallet.TransactionIDs(1, MaxPageSize, false, true)
	require.NoError(err)
	require.Equal([]uint64{2, 4}, tail)

	limited, err := env.wallet.TransactionIDs(0, 2, true, true)
	require.NoError(err)
	require.Equal([]uint64{0, 1}, limited)
}

func TestListPageLimit(t *testing.T) {
	require := require.New(t)
	env := newTestEnv(t, 2, 2)

	_, err := env.wallet.TransactionIDs(0, MaxPageSize+1, true, true)
	require.ErrorIs(err, ErrPageLimitExceeded)
}

func TestStatePersists(t *testing.T) {
	require := require.New(t)

	db := memdb.New()
	walletDB := prefixdb.New([]byte("wallet"), db)
	bnk := bank.New(prefixdb.New([]byte("bank"), db))
	router := contract.NewRegistry()
	addr := ids.GenerateTestShortID()
	owners := []ids.ShortID{ids.GenerateTestShortID(), ids.GenerateTestShortID()}

	w, err := New(walletDB, addr, owners, 2, bnk, router, log.NoLog{}, metric.NewRegistry())
	require.NoError(err)

	id, err := w.Submit(owners[0], ids.GenerateTestShortID(), 10, nil)
	require.NoError(err)

	// Reopen over the same database; the genesis arguments are ignored.
	reopened, err := New(walletDB, addr, nil, 0, bnk, contract.NewRegistry(), log.NoLog{}, metric.NewRegistry())
	require.NoError(err)

	require.Equal(owners, reopened.Owners())
	require.Equal(uint32(2), reopened.Required())

	count, err := reopened.ConfirmationCount(id)
	require.NoError(err)
	require.Equal(uint32(1), count)

	nextID, err := reopened.Submit(owners[1], ids.GenerateTestShortID(), 0, nil)
	require.NoError(err)
	require.Equal(id+1, nextID)
}

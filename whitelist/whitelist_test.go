// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package whitelist

import (
	"testing"
	"time"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/fundraise/utils/timer/mockable"
)

func newTestWhitelist(t *testing.T, owner ids.ShortID, deadline time.Time) (*Whitelist, *mockable.Clock) {
	require := require.New(t)

	clock := &mockable.Clock{}
	clock.Set(time.Unix(1700000000, 0))

	w, err := New(memdb.New(), owner, deadline, clock)
	require.NoError(err)
	return w, clock
}

func TestRegisterSelf(t *testing.T) {
	require := require.New(t)

	owner := ids.GenerateTestShortID()
	account := ids.GenerateTestShortID()
	w, _ := newTestWhitelist(t, owner, time.Time{})

	require.NoError(w.RegisterSelf(account))

	tier, err := w.Tier(account)
	require.NoError(err)
	require.Equal(uint8(1), tier)

	count, err := w.Count()
	require.NoError(err)
	require.Equal(uint64(1), count)

	err = w.RegisterSelf(account)
	require.ErrorIs(err, ErrAlreadyRegistered)
}

func TestRegisterOwnerOnly(t *testing.T) {
	require := require.New(t)

	owner := ids.GenerateTestShortID()
	account := ids.GenerateTestShortID()
	w, _ := newTestWhitelist(t, owner, time.Time{})

	err := w.Register(account, account)
	require.ErrorIs(err, ErrNotWhitelistOwner)

	require.NoError(w.Register(owner, account))
}

func TestUnregisteredTierIsZero(t *testing.T) {
	require := require.New(t)

	w, _ := newTestWhitelist(t, ids.GenerateTestShortID(), time.Time{})

	tier, err := w.Tier(ids.GenerateTestShortID())
	require.NoError(err)
	require.Equal(TierNone, tier)
}

func TestRemoveAndReadd(t *testing.T) {
	require := require.New(t)

	owner := ids.GenerateTestShortID()
	account := ids.GenerateTestShortID()
	w, _ := newTestWhitelist(t, owner, time.Time{})

	require.NoError(w.Register(owner, account))

	count, err := w.Count()
	require.NoError(err)
	require.Equal(uint64(1), count)

	require.NoError(w.Remove(owner, account))

	count, err = w.Count()
	require.NoError(err)
	require.Zero(count)

	require.NoError(w.Register(owner, account))

	count, err = w.Count()
	require.NoError(err)
	require.Equal(uint64(1), count)
}

func TestChangeTier(t *testing.T) {
	require := require.New(t)

	owner := ids.GenerateTestShortID()
	account := ids.GenerateTestShortID()
	w, _ := newTestWhitelist(t, owner, time.Time{})

	require.NoError(w.Register(owner, account))
	require.NoError(w.ChangeTier(owner, account, 2))

	tier, err := w.Tier(account)
	require.NoError(err)
	require.Equal(uint8(2), tier)

	err = w.ChangeTier(owner, account, 4)
	require.ErrorIs(err, ErrInvalidTier)

	err = w.ChangeTier(owner, account, TierNone)
	require.ErrorIs(err, ErrInvalidTier)

	err = w.ChangeTier(owner, ids.GenerateTestShortID(), 2)
	require.ErrorIs(err, ErrNotRegistered)
}

func TestPauseResume(t *testing.T) {
	require := require.New(t)

	owner := ids.GenerateTestShortID()
	w, _ := newTestWhitelist(t, owner, time.Time{})

	require.NoError(w.Pause(owner))

	err := w.RegisterSelf(ids.GenerateTestShortID())
	require.ErrorIs(err, ErrPaused)

	require.NoError(w.Resume(owner))
	require.NoError(w.RegisterSelf(ids.GenerateTestShortID()))
}

func TestStopIsTerminal(t *testing.T) {
	require := require.New(t)

	owner := ids.GenerateTestShortID()
	w, _ := newTestWhitelist(t, owner, time.Time{})

	err := w.Stop(ids.GenerateTestShortID())
	require.ErrorIs(err, ErrNotWhitelistOwner)

	require.NoError(w.Stop(owner))

	err = w.RegisterSelf(ids.GenerateTestShortID())
	require.ErrorIs(err, ErrStopped)
}

func TestRegistrationDeadline(t *testing.T) {
	require := require.New(t)

	owner := ids.GenerateTestShortID()
	deadline := time.Unix(1700000100, 0)
	w, clock := newTestWhitelist(t, owner, deadline)

	require.NoError(w.RegisterSelf(ids.GenerateTestShortID()))

	clock.Set(deadline.Add(time.Second))

	err := w.RegisterSelf(ids.GenerateTestShortID())
	require.ErrorIs(err, ErrDeadlinePassed)
}

func TestOwnershipHandoverViaCall(t *testing.T) {
	require := require.New(t)

	owner := ids.GenerateTestShortID()
	next := ids.GenerateTestShortID()
	w, _ := newTestWhitelist(t, owner, time.Time{})

	payload, err := EncodeCall(&TransferOwnershipCall{NewOwner: next})
	require.NoError(err)

	err = w.Call(next, 0, payload)
	require.ErrorIs(err, ErrNotWhitelistOwner)

	require.NoError(w.Call(owner, 0, payload))

	current, err := w.Owner()
	require.NoError(err)
	require.Equal(next, current)
}

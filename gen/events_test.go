package gen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustEventGen(t *testing.T, seed int64, userCount int) (*EventGen, []*User) {
	t.Helper()
	users := mustUserBatch(t, seed, userCount, 1)
	base, err := NewBase(seed+1, testWindow(), 100)
	require.NoError(t, err)
	egen, err := NewEventGen(base, users)
	require.NoError(t, err)
	return egen, users
}

func TestEventGenRequiresUsers(t *testing.T) {
	base, err := NewBase(1, testWindow(), 100)
	require.NoError(t, err)
	_, err = NewEventGen(base, nil)
	require.Error(t, err)
	assert.True(t, IsKind(err, FaultPrerequisiteMissing))
}

func TestEventGenMeetsTargetWithWholeSessions(t *testing.T) {
	egen, _ := mustEventGen(t, 1, 50)
	events, err := egen.GenerateBatch(300, 1)
	require.NoError(t, err)
	// The last session is never cut short, so the batch can overshoot.
	assert.GreaterOrEqual(t, len(events), 300)

	// Monotonic contiguous ids.
	for i, ev := range events {
		assert.Equal(t, int64(1+i), ev.ID)
	}
}

func TestEventGenReferentialIntegrity(t *testing.T) {
	egen, users := mustEventGen(t, 3, 50)
	ids := make(map[int64]*User, len(users))
	for _, u := range users {
		ids[u.ID] = u
	}
	events, err := egen.GenerateBatch(500, 1)
	require.NoError(t, err)
	for _, ev := range events {
		owner, ok := ids[ev.UserID]
		require.True(t, ok, "event %d references unknown user %d", ev.ID, ev.UserID)
		assert.False(t, ev.Timestamp.Before(owner.CreatedAt),
			"event %d at %s precedes signup %s", ev.ID, ev.Timestamp, owner.CreatedAt)
	}
}

func TestEventGenSessionTimestampsNonDecreasing(t *testing.T) {
	egen, _ := mustEventGen(t, 5, 50)
	events, err := egen.GenerateBatch(500, 1)
	require.NoError(t, err)

	lastInSession := map[string]*Event{}
	for _, ev := range events {
		if prev, ok := lastInSession[ev.SessionID]; ok {
			assert.False(t, ev.Timestamp.Before(prev.Timestamp),
				"session %s went backwards at event %d", ev.SessionID, ev.ID)
		}
		lastInSession[ev.SessionID] = ev
	}
}

func TestEventGenSessionSpanBounded(t *testing.T) {
	egen, users := mustEventGen(t, 7, 50)
	events, err := egen.GenerateBatch(1000, 1)
	require.NoError(t, err)

	owners := map[int64]*User{}
	for _, u := range users {
		owners[u.ID] = u
	}
	type span struct {
		first, last *Event
	}
	spans := map[string]*span{}
	for _, ev := range events {
		s, ok := spans[ev.SessionID]
		if !ok {
			spans[ev.SessionID] = &span{first: ev, last: ev}
			continue
		}
		s.last = ev
	}
	for _, s := range spans {
		tier := owners[s.first.UserID].Tier
		// Planned duration tops out at 20 minutes x tier multiplier.
		maxSpan := 20 * tier.Multiplier()
		got := s.last.Timestamp.Sub(s.first.Timestamp).Minutes()
		assert.LessOrEqual(t, got, maxSpan+1e-6,
			"session %s spans %.2f min, cap %.2f", s.first.SessionID, got, maxSpan)
	}
}

func TestEventGenSessionOwnership(t *testing.T) {
	egen, _ := mustEventGen(t, 9, 50)
	events, err := egen.GenerateBatch(500, 1)
	require.NoError(t, err)

	sessionOwner := map[string]int64{}
	for _, ev := range events {
		if owner, ok := sessionOwner[ev.SessionID]; ok {
			assert.Equal(t, owner, ev.UserID, "session %s shared between users", ev.SessionID)
		}
		sessionOwner[ev.SessionID] = ev.UserID
	}
}

func TestEventGenMidDayWindowEndOrdering(t *testing.T) {
	// Signups can land on the window's final partial day; event timestamps
	// must still follow the signup and stay non-decreasing per session.
	w := TimeWindow{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 30, 0, 30, 0, 0, time.UTC),
	}
	ubase, err := NewBase(23, w, 100)
	require.NoError(t, err)
	users, err := NewUserGen(ubase).GenerateBatch(2000, 1)
	require.NoError(t, err)

	base, err := NewBase(24, w, 100)
	require.NoError(t, err)
	egen, err := NewEventGen(base, users)
	require.NoError(t, err)

	owners := map[int64]*User{}
	for _, u := range users {
		owners[u.ID] = u
	}
	events, err := egen.GenerateBatch(10000, 1)
	require.NoError(t, err)

	lastInSession := map[string]*Event{}
	for _, ev := range events {
		owner := owners[ev.UserID]
		assert.False(t, ev.Timestamp.Before(owner.CreatedAt),
			"event %d at %s precedes signup %s", ev.ID, ev.Timestamp, owner.CreatedAt)
		if prev, ok := lastInSession[ev.SessionID]; ok {
			assert.False(t, ev.Timestamp.Before(prev.Timestamp),
				"session %s went backwards at event %d", ev.SessionID, ev.ID)
		}
		lastInSession[ev.SessionID] = ev
	}
}

func TestEventGenPurchaseFieldsConditional(t *testing.T) {
	egen, _ := mustEventGen(t, 11, 50)
	events, err := egen.GenerateBatch(2000, 1)
	require.NoError(t, err)
	for _, ev := range events {
		if ev.Type == EventPurchase {
			assert.Greater(t, ev.Revenue, 0.0)
		} else {
			assert.Zero(t, ev.Revenue)
		}
		if ev.Type == EventPageView {
			assert.Greater(t, ev.DurationSeconds, int64(0))
		} else {
			assert.Zero(t, ev.DurationSeconds)
		}
	}
}

func TestEventGenDeterminism(t *testing.T) {
	genA, _ := mustEventGen(t, 42, 30)
	genB, _ := mustEventGen(t, 42, 30)

	a, err := genA.GenerateBatch(200, 1)
	require.NoError(t, err)
	b, err := genB.GenerateBatch(200, 1)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

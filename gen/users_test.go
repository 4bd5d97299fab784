package gen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustUserBatch(t *testing.T, seed int64, count int, startID int64) []*User {
	t.Helper()
	base, err := NewBase(seed, testWindow(), 100)
	require.NoError(t, err)
	users, err := NewUserGen(base).GenerateBatch(count, startID)
	require.NoError(t, err)
	return users
}

func TestUserGenCountAndContiguousIDs(t *testing.T) {
	users := mustUserBatch(t, 1, 500, 10)
	require.Len(t, users, 500)
	for i, u := range users {
		assert.Equal(t, int64(10+i), u.ID)
	}
}

func TestUserGenRejectsNonPositiveCount(t *testing.T) {
	base, err := NewBase(1, testWindow(), 100)
	require.NoError(t, err)
	_, err = NewUserGen(base).GenerateBatch(0, 1)
	require.Error(t, err)
	assert.True(t, IsKind(err, FaultConfiguration))
}

func TestUserGenTimestampsWithinWindow(t *testing.T) {
	windows := map[string]TimeWindow{
		"end of day": testWindow(),
		// A window ending shortly after midnight exposes hour-of-day
		// rewrites that would push a final-day signup past the end.
		"mid-day end": {
			Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2025, 6, 30, 0, 30, 0, 0, time.UTC),
		},
	}
	for name, w := range windows {
		t.Run(name, func(t *testing.T) {
			base, err := NewBase(3, w, 100)
			require.NoError(t, err)
			users, err := NewUserGen(base).GenerateBatch(20000, 1)
			require.NoError(t, err)
			for _, u := range users {
				assert.False(t, u.CreatedAt.Before(w.Start), "user %d signed up before window start", u.ID)
				assert.False(t, u.CreatedAt.After(w.End), "user %d signed up after window end", u.ID)
			}
		})
	}
}

func TestUserGenLatentAttributes(t *testing.T) {
	valid := map[Tier]bool{TierFree: true, TierBasic: true, TierPremium: true, TierEnterprise: true}
	for _, u := range mustUserBatch(t, 5, 1000, 1) {
		assert.True(t, valid[u.Tier], "unknown tier %q", u.Tier)
		assert.GreaterOrEqual(t, u.ActivityPropensity, 0.1)
		assert.LessOrEqual(t, u.ActivityPropensity, 0.9)
		assert.GreaterOrEqual(t, u.PurchasePropensity, 0.05)
		assert.LessOrEqual(t, u.PurchasePropensity, 0.8)
	}
}

func TestUserGenTierDistribution(t *testing.T) {
	users := mustUserBatch(t, 11, 20000, 1)
	counts := map[Tier]int{}
	for _, u := range users {
		counts[u.Tier]++
	}
	n := float64(len(users))
	assert.InDelta(t, 0.60, float64(counts[TierFree])/n, 0.02)
	assert.InDelta(t, 0.25, float64(counts[TierBasic])/n, 0.02)
	assert.InDelta(t, 0.12, float64(counts[TierPremium])/n, 0.02)
	assert.InDelta(t, 0.03, float64(counts[TierEnterprise])/n, 0.01)
}

func TestUserGenBusinessHoursBias(t *testing.T) {
	users := mustUserBatch(t, 13, 5000, 1)
	inHours := 0
	for _, u := range users {
		if h := u.CreatedAt.Hour(); h >= 9 && h <= 17 {
			inHours++
		}
	}
	// 70% forced into [9,17] plus whatever the uniform draw lands there.
	assert.Greater(t, float64(inHours)/float64(len(users)), 0.6)
}

func TestUserGenWeekdayBias(t *testing.T) {
	users := mustUserBatch(t, 17, 10000, 1)
	weekend := 0
	for _, u := range users {
		if wd := u.CreatedAt.Weekday(); wd == time.Saturday || wd == time.Sunday {
			weekend++
		}
	}
	// 2/7 uniform share would be ~28.6%; the bias moves 70% of those away.
	assert.Less(t, float64(weekend)/float64(len(users)), 0.15)
}

func TestUserGenDeterminism(t *testing.T) {
	a := mustUserBatch(t, 42, 200, 1)
	b := mustUserBatch(t, 42, 200, 1)
	require.Equal(t, a, b)
}

func TestUserGenIdentityFieldsPopulated(t *testing.T) {
	for _, u := range mustUserBatch(t, 19, 50, 1) {
		assert.NotEmpty(t, u.Username)
		assert.NotEmpty(t, u.Email)
		assert.NotEmpty(t, u.Country)
		assert.NotEmpty(t, u.Referrer)
	}
}

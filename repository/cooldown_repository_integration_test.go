package repository

import (
	"context"
	"testing"
	"time"

	"bloop/models"
	"bloop/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCooldownRepository_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	repo := NewCooldownRepository(testDB.DB)
	guildID := int64(444555666)
	userID := int64(300)

	t.Run("Get returns nil when never set", func(t *testing.T) {
		cooldown, err := repo.Get(ctx, guildID, userID, models.CooldownDaily)
		require.NoError(t, err)
		assert.Nil(t, cooldown)
	})

	t.Run("Upsert then Get", func(t *testing.T) {
		seed := testutil.CreateTestCooldown(guildID, userID, models.CooldownDaily, time.Now().Add(24*time.Hour))
		require.NoError(t, repo.Upsert(ctx, seed.GuildID, seed.UserID, seed.Name, seed.NextTime))

		cooldown, err := repo.Get(ctx, guildID, userID, models.CooldownDaily)
		require.NoError(t, err)
		require.NotNil(t, cooldown)
		assert.Equal(t, models.CooldownDaily, cooldown.Name)
		assert.WithinDuration(t, seed.NextTime, cooldown.NextTime, time.Second)
	})

	t.Run("Upsert replaces the next time", func(t *testing.T) {
		later := time.Now().Add(48 * time.Hour)
		require.NoError(t, repo.Upsert(ctx, guildID, userID, models.CooldownDaily, later))

		cooldown, err := repo.Get(ctx, guildID, userID, models.CooldownDaily)
		require.NoError(t, err)
		require.NotNil(t, cooldown)
		assert.WithinDuration(t, later, cooldown.NextTime, time.Second)
	})

	t.Run("names are independent", func(t *testing.T) {
		require.NoError(t, repo.Upsert(ctx, guildID, userID, models.CooldownGamble, time.Now().Add(time.Minute)))

		daily, err := repo.Get(ctx, guildID, userID, models.CooldownDaily)
		require.NoError(t, err)
		require.NotNil(t, daily)

		gamble, err := repo.Get(ctx, guildID, userID, models.CooldownGamble)
		require.NoError(t, err)
		require.NotNil(t, gamble)
		assert.True(t, daily.NextTime.After(gamble.NextTime))
	})
}

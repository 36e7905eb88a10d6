//go:build integration
// +build integration

package repository

import (
	"context"
	"database/sql"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synca-ui/builder-quantum-landing-sub001/common/config"
	"github.com/synca-ui/builder-quantum-landing-sub001/common/database"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/domain"
)

// 获取测试数据库连接（不可用时跳过）
func getTestDB(t *testing.T) *sql.DB {
	t.Helper()
	port, _ := strconv.Atoi(getEnv("TEST_DB_PORT", "5432"))
	cfg := &config.DatabaseConfig{
		Host:     getEnv("TEST_DB_HOST", "localhost"),
		Port:     port,
		User:     getEnv("TEST_DB_USER", "postgres"),
		Password: getEnv("TEST_DB_PASSWORD", "postgres"),
		Database: getEnv("TEST_DB_NAME", "sites_test"),
		SSLMode:  getEnv("TEST_DB_SSLMODE", "disable"),
	}
	db, err := database.NewPostgresDB(context.Background(), cfg)
	if err != nil {
		t.Skipf("Skipping integration test: cannot connect to database: %v", err)
	}
	_, err = Migrate(context.Background(), db, zapNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func uniqueName(prefix string) string {
	return prefix + "-" + strconv.FormatInt(time.Now().UnixNano()%1e9, 36)
}

func cleanup(t *testing.T, db *sql.DB, ids ...string) {
	t.Cleanup(func() {
		for _, id := range ids {
			_, _ = db.Exec(`DELETE FROM address_records WHERE configuration_id = $1`, id)
			_, _ = db.Exec(`DELETE FROM configurations WHERE configuration_id = $1`, id)
		}
	})
}

func TestPostgresPublish_ConcurrentSameName(t *testing.T) {
	db := getTestDB(t)
	repo := NewPostgresConfigurationsRepository(db)
	ctx := context.Background()

	name := uniqueName("bella")
	var ids []string
	for i := 0; i < 4; i++ {
		id, err := repo.CreateConfiguration(ctx, &domain.Configuration{
			OwnerID:      "owner-" + strconv.Itoa(i),
			BusinessName: "Bella " + strconv.Itoa(i),
			Template:     "cozy",
		})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	cleanup(t, db, ids...)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i, id := range ids {
		wg.Add(1)
		go func(owner, id string) {
			defer wg.Done()
			err := repo.Publish(ctx, domain.PublishCommand{ConfigurationID: id, OwnerID: owner, Address: name, PublishedAt: time.Now()})
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, ErrAddressTaken)
		}("owner-"+strconv.Itoa(i), id)
	}
	wg.Wait()
	assert.Equal(t, 1, wins)

	rec, found, err := repo.LookupAddress(ctx, name)
	require.NoError(t, err)
	require.True(t, found)
	cfg, err := repo.GetConfiguration(ctx, rec.ConfigurationID)
	require.NoError(t, err)
	assert.True(t, cfg.IsPublished())
	assert.Equal(t, name, cfg.PublishedAddress)
}

func TestPostgresPublish_RepublishReleasesOldName(t *testing.T) {
	db := getTestDB(t)
	repo := NewPostgresConfigurationsRepository(db)
	ctx := context.Background()

	id, err := repo.CreateConfiguration(ctx, &domain.Configuration{OwnerID: "o1", BusinessName: "Cafe", Template: "cozy"})
	require.NoError(t, err)
	cleanup(t, db, id)

	first, second := uniqueName("cafe"), uniqueName("cafe-neu")
	require.NoError(t, repo.Publish(ctx, domain.PublishCommand{ConfigurationID: id, OwnerID: "o1", Address: first, PublishedAt: time.Now()}))
	require.NoError(t, repo.Publish(ctx, domain.PublishCommand{ConfigurationID: id, OwnerID: "o1", Address: second, PublishedAt: time.Now()}))

	_, found, err := repo.LookupAddress(ctx, first)
	require.NoError(t, err)
	assert.False(t, found)

	got, err := repo.GetConfigurationBySlug(ctx, strings.ToLower(second))
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
}

package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/valpere/nebo/internal/config"
	"github.com/valpere/nebo/internal/models"
)

func TestMigrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectExec("CREATE TABLE").WillReturnResult(sqlmock.NewResult(0, 0))

	// The migrator probes the catalog before creating; we only check it does not panic
	assert.NotPanics(t, func() {
		_ = Migrate(gormDB)
	})
}

func TestConnect(t *testing.T) {
	t.Run("sqlite creates kv table", func(t *testing.T) {
		storage := &config.StorageConfig{
			Backend:    "sqlite",
			SQLitePath: filepath.Join(t.TempDir(), "nebo.db"),
		}

		db, err := Connect(storage, &config.DatabaseConfig{})
		require.NoError(t, err)
		defer Close(db)

		assert.True(t, db.Migrator().HasTable(&models.KVEntry{}))

		entry := models.KVEntry{Key: "darkMode", Value: "enabled", UpdatedAt: time.Now().UTC()}
		require.NoError(t, db.Create(&entry).Error)

		var got models.KVEntry
		require.NoError(t, db.Where("key = ?", "darkMode").Take(&got).Error)
		assert.Equal(t, "enabled", got.Value)
	})

	t.Run("sqlite reopens existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nebo.db")
		storage := &config.StorageConfig{Backend: "sqlite", SQLitePath: path}

		db, err := Connect(storage, &config.DatabaseConfig{})
		require.NoError(t, err)
		require.NoError(t, db.Create(&models.KVEntry{Key: "lastLatitude", Value: "10.3157"}).Error)
		require.NoError(t, Close(db))

		db, err = Connect(storage, &config.DatabaseConfig{})
		require.NoError(t, err)
		defer Close(db)

		var got models.KVEntry
		require.NoError(t, db.Where("key = ?", "lastLatitude").Take(&got).Error)
		assert.Equal(t, "10.3157", got.Value)
	})

	t.Run("rejects non sql backend", func(t *testing.T) {
		_, err := Connect(&config.StorageConfig{Backend: "redis"}, &config.DatabaseConfig{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not an SQL database")
	})
}

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.DatabaseConfig
		want string
	}{
		{
			name: "local",
			cfg:  config.DatabaseConfig{Host: "localhost", Port: 5432, User: "user", Password: "pass", Name: "db", SSLMode: "disable"},
			want: "host=localhost port=5432 user=user password=pass dbname=db sslmode=disable",
		},
		{
			name: "empty password",
			cfg:  config.DatabaseConfig{Host: "localhost", Port: 5432, User: "user", Name: "db", SSLMode: "disable"},
			want: "host=localhost port=5432 user=user password= dbname=db sslmode=disable",
		},
		{
			name: "ssl required on custom port",
			cfg:  config.DatabaseConfig{Host: "db.example.com", Port: 5433, User: "admin", Password: "secure", Name: "nebo", SSLMode: "require"},
			want: "host=db.example.com port=5433 user=admin password=secure dbname=nebo sslmode=require",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildDSN(&tt.cfg))
		})
	}
}

func TestConnectRedis(t *testing.T) {
	t.Run("builds address", func(t *testing.T) {
		assert.Equal(t, "redis.example.com:6380", RedisAddr(&config.RedisConfig{Host: "redis.example.com", Port: 6380}))
	})

	t.Run("ping failure surfaces", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		defer client.Close()

		mock.ExpectPing().SetErr(context.DeadlineExceeded)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := client.Ping(ctx).Err()
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("unreachable server", func(t *testing.T) {
		// Nothing listens on port 1
		_, err := ConnectRedis(&config.RedisConfig{Host: "127.0.0.1", Port: 1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to connect to Redis")
	})
}

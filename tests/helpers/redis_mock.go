package helpers

import (
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// MockRedis represents a mocked Redis connection for testing
type MockRedis struct {
	Client *redis.Client
	Mock   redismock.ClientMock
}

// NewMockRedis creates a new mock Redis client
func NewMockRedis() *MockRedis {
	client, mock := redismock.NewClientMock()

	return &MockRedis{
		Client: client,
		Mock:   mock,
	}
}

// Close closes the mock Redis connection
func (m *MockRedis) Close() error {
	return m.Client.Close()
}

// ExpectationsWereMet checks if all expected Redis interactions were met
func (m *MockRedis) ExpectationsWereMet(t *testing.T) {
	require.NoError(t, m.Mock.ExpectationsWereMet())
}

// ExpectSlotHit sets up expectation for reading a present slot
func (m *MockRedis) ExpectSlotHit(key, value string) {
	m.Mock.ExpectGet(key).SetVal(value)
}

// ExpectSlotMiss sets up expectation for reading an absent slot
func (m *MockRedis) ExpectSlotMiss(key string) {
	m.Mock.ExpectGet(key).RedisNil()
}

// ExpectSlotWrite sets up expectation for overwriting a slot without expiry
func (m *MockRedis) ExpectSlotWrite(key, value string) {
	m.Mock.ExpectSet(key, value, 0).SetVal("OK")
}

// ExpectPing sets up expectation for ping command
func (m *MockRedis) ExpectPing() {
	m.Mock.ExpectPing().SetVal("PONG")
}

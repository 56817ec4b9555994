//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mcoot/signupgate/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
	container *tcpostgres.PostgresContainer
	postgres  *Storage
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("signup"),
		tcpostgres.WithUsername("signup"),
		tcpostgres.WithPassword("signup"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	s.Require().NoError(err, "failed to start postgres container")
	s.container = container

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	pool, err := Connect(ctx, url)
	s.Require().NoError(err)

	s.postgres = New(pool)
	s.Require().NoError(s.postgres.Migrate(ctx))
	s.Storage = s.postgres
	s.Ctx = ctx
}

func (s *StorageSuite) TearDownSuite() {
	if s.postgres != nil {
		_ = s.postgres.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

func (s *StorageSuite) SetupTest() {
	_, err := s.postgres.pool.Exec(s.Ctx, `TRUNCATE users`)
	s.Require().NoError(err)
}

func (s *StorageSuite) TestMigrateIsIdempotent() {
	s.NoError(s.postgres.Migrate(s.Ctx))
}

package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/signupgate/internal/model"
	"github.com/mcoot/signupgate/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
	memory *Storage
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.memory = New()
	s.Storage = s.memory
	s.Ctx = context.Background()
}

func (s *StorageSuite) TestReturnedUserIsACopy() {
	s.Require().NoError(s.memory.CreateUser(s.Ctx, &model.User{ID: "u1", Username: "alice", Email: "a@example.com"}))

	got, err := s.memory.GetUser(s.Ctx, "u1")
	s.Require().NoError(err)
	got.Username = "mallory"

	again, err := s.memory.GetUser(s.Ctx, "u1")
	s.Require().NoError(err)
	s.Equal("alice", again.Username)
}

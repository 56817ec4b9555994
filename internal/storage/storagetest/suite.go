// Package storagetest holds behaviour tests shared by every storage backend.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/signupgate/internal/model"
	"github.com/mcoot/signupgate/internal/storage"
)

// Suite exercises a storage.Storage. Backends embed it and set Storage in
// their SetupTest.
type Suite struct {
	suite.Suite
	Storage storage.Storage
	Ctx     context.Context
}

func (s *Suite) user(id, username, email string) *model.User {
	return &model.User{
		ID:           model.UserID(id),
		Username:     username,
		Email:        email,
		PasswordHash: "$2a$04$hash",
		CreatedAt:    time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *Suite) TestCreateAndGetUser() {
	s.Require().NoError(s.Storage.CreateUser(s.Ctx, s.user("00000000-0000-0000-0000-000000000001", "alice", "Alice@Example.com")))

	got, err := s.Storage.GetUser(s.Ctx, "00000000-0000-0000-0000-000000000001")
	s.Require().NoError(err)
	s.Equal("alice", got.Username)
	s.Equal("alice@example.com", got.Email)
	s.Equal("$2a$04$hash", got.PasswordHash)
	s.True(got.CreatedAt.Equal(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)))
}

func (s *Suite) TestGetUserByUsername() {
	s.Require().NoError(s.Storage.CreateUser(s.Ctx, s.user("00000000-0000-0000-0000-000000000001", "alice", "alice@example.com")))

	got, err := s.Storage.GetUserByUsername(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.UserID("00000000-0000-0000-0000-000000000001"), got.ID)

	_, err = s.Storage.GetUserByUsername(s.Ctx, "bob")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *Suite) TestGetUserByEmailIgnoresCase() {
	s.Require().NoError(s.Storage.CreateUser(s.Ctx, s.user("00000000-0000-0000-0000-000000000001", "alice", "alice@example.com")))

	got, err := s.Storage.GetUserByEmail(s.Ctx, "ALICE@example.COM")
	s.Require().NoError(err)
	s.Equal("alice", got.Username)

	_, err = s.Storage.GetUserByEmail(s.Ctx, "bob@example.com")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *Suite) TestGetUserNotFound() {
	_, err := s.Storage.GetUser(s.Ctx, "00000000-0000-0000-0000-00000000dead")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *Suite) TestDuplicateUsername() {
	s.Require().NoError(s.Storage.CreateUser(s.Ctx, s.user("00000000-0000-0000-0000-000000000001", "alice", "alice@example.com")))

	err := s.Storage.CreateUser(s.Ctx, s.user("00000000-0000-0000-0000-000000000002", "alice", "other@example.com"))
	s.ErrorIs(err, model.ErrUsernameTaken)

	// the losing email is still free
	s.NoError(s.Storage.CreateUser(s.Ctx, s.user("00000000-0000-0000-0000-000000000003", "carol", "other@example.com")))
}

func (s *Suite) TestDuplicateEmail() {
	s.Require().NoError(s.Storage.CreateUser(s.Ctx, s.user("00000000-0000-0000-0000-000000000001", "alice", "alice@example.com")))

	err := s.Storage.CreateUser(s.Ctx, s.user("00000000-0000-0000-0000-000000000002", "bob", "Alice@Example.com"))
	s.ErrorIs(err, model.ErrEmailTaken)

	// the losing username is still free
	s.NoError(s.Storage.CreateUser(s.Ctx, s.user("00000000-0000-0000-0000-000000000003", "bob", "bob@example.com")))
}

func (s *Suite) TestConcurrentCreateSameEmail() {
	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("00000000-0000-0000-0000-0000000001%02d", i)
			errs[i] = s.Storage.CreateUser(s.Ctx, s.user(id, fmt.Sprintf("user%d", i), "same@example.com"))
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		s.ErrorIs(err, model.ErrEmailTaken)
	}
	s.Equal(1, created)
}

func (s *Suite) TestDeleteUserFreesIdentity() {
	s.Require().NoError(s.Storage.CreateUser(s.Ctx, s.user("00000000-0000-0000-0000-000000000001", "alice", "alice@example.com")))
	s.Require().NoError(s.Storage.DeleteUser(s.Ctx, "00000000-0000-0000-0000-000000000001"))

	_, err := s.Storage.GetUser(s.Ctx, "00000000-0000-0000-0000-000000000001")
	s.ErrorIs(err, model.ErrUserNotFound)
	s.NoError(s.Storage.CreateUser(s.Ctx, s.user("00000000-0000-0000-0000-000000000002", "alice", "alice@example.com")))
}

func (s *Suite) TestDeleteMissingUser() {
	s.NoError(s.Storage.DeleteUser(s.Ctx, "00000000-0000-0000-0000-00000000dead"))
}

func (s *Suite) TestPing() {
	s.NoError(s.Storage.Ping(s.Ctx))
}

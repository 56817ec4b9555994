package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/signupgate/internal/model"
	"github.com/mcoot/signupgate/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Uniqueness is claimed with SETNX on the username and email index keys.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ping checks the connection
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// storedUser is the JSON shape of a user record
type storedUser struct {
	ID           model.UserID `json:"id"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"password_hash"`
	CreatedAt    time.Time    `json:"created_at"`
}

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	email := strings.ToLower(user.Email)
	data, err := json.Marshal(storedUser{
		ID:           user.ID,
		Username:     user.Username,
		Email:        email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	})
	if err != nil {
		return err
	}

	claimed, err := s.client.SetNX(ctx, usernameIndexKey(user.Username), string(user.ID), 0).Result()
	if err != nil {
		return fmt.Errorf("claim username: %w", err)
	}
	if !claimed {
		return model.ErrUsernameTaken
	}

	claimed, err = s.client.SetNX(ctx, emailIndexKey(email), string(user.ID), 0).Result()
	if err != nil || !claimed {
		s.client.Del(ctx, usernameIndexKey(user.Username))
		if err != nil {
			return fmt.Errorf("claim email: %w", err)
		}
		return model.ErrEmailTaken
	}

	if err := s.client.Set(ctx, userKey(user.ID), data, 0).Err(); err != nil {
		s.client.Del(ctx, usernameIndexKey(user.Username), emailIndexKey(email))
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	data, err := s.client.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var su storedUser
	if err := json.Unmarshal(data, &su); err != nil {
		return nil, err
	}
	return &model.User{
		ID:           su.ID,
		Username:     su.Username,
		Email:        su.Email,
		PasswordHash: su.PasswordHash,
		CreatedAt:    su.CreatedAt,
	}, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.getByIndex(ctx, usernameIndexKey(username))
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getByIndex(ctx, emailIndexKey(strings.ToLower(email)))
}

func (s *Storage) DeleteUser(ctx context.Context, id model.UserID) error {
	user, err := s.GetUser(ctx, id)
	if errors.Is(err, model.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, userKey(id))
	pipe.Del(ctx, usernameIndexKey(user.Username))
	pipe.Del(ctx, emailIndexKey(user.Email))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) getByIndex(ctx context.Context, indexKey string) (*model.User, error) {
	id, err := s.client.Get(ctx, indexKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}
	return s.GetUser(ctx, model.UserID(id))
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mkrasnov/contactbook/internal/models"
)

// Snapshot mirrors every user field the request path reads. A cache hit
// stands in for the database row, so nothing may be missing here.
type Snapshot struct {
	ID             uint      `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"hashed_password"`
	CreatedAt      time.Time `json:"created_at"`
	Avatar         *string   `json:"avatar"`
	RefreshToken   *string   `json:"refresh_token"`
	Role           string    `json:"role"`
}

func SnapshotOf(u *models.User) *Snapshot {
	return &Snapshot{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		HashedPassword: u.HashedPassword,
		CreatedAt:      u.CreatedAt,
		Avatar:         u.Avatar,
		RefreshToken:   u.RefreshToken,
		Role:           u.Role,
	}
}

func (s *Snapshot) User() *models.User {
	return &models.User{
		ID:             s.ID,
		Username:       s.Username,
		Email:          s.Email,
		HashedPassword: s.HashedPassword,
		CreatedAt:      s.CreatedAt,
		Avatar:         s.Avatar,
		RefreshToken:   s.RefreshToken,
		Role:           s.Role,
	}
}

// UserCache is the cache-aside store for user snapshots. Get returns
// (nil, nil) on a miss.
type UserCache interface {
	Get(ctx context.Context, username string) (*models.User, error)
	Set(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, username string) error
}

type Redis struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedis(ctx context.Context, host, port, password string, ttl time.Duration) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         host + ":" + port,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Redis{Client: client, TTL: ttl}, nil
}

func (r *Redis) Close() error {
	return r.Client.Close()
}

func userKey(username string) string {
	return "user:" + username
}

func (r *Redis) Get(ctx context.Context, username string) (*models.User, error) {
	data, err := r.Client.Get(ctx, userKey(username)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding cached user: %w", err)
	}
	return snap.User(), nil
}

func (r *Redis) Set(ctx context.Context, u *models.User) error {
	data, err := json.Marshal(SnapshotOf(u))
	if err != nil {
		return fmt.Errorf("encoding cached user: %w", err)
	}
	if err := r.Client.Set(ctx, userKey(u.Username), data, r.TTL).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, username string) error {
	if err := r.Client.Del(ctx, userKey(username)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

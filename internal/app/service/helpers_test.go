package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ikkim/bookshelf-backend/internal/app/model"
	"github.com/ikkim/bookshelf-backend/internal/db"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB
}

func createUser(t *testing.T, testDB *gorm.DB, login string) *model.User {
	user := &model.User{
		Login:        login,
		Email:        login + "@example.com",
		PasswordHash: "hash",
		RoleID:       model.RoleIDUser,
	}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

func createItem(t *testing.T, testDB *gorm.DB, title, price string) *model.CatalogItem {
	item := &model.CatalogItem{Title: title, Author: "Author", Publisher: "Press", Price: price}
	require.NoError(t, testDB.Create(item).Error)
	return item
}

type fakeRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func (f *fakeRevoker) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.revoked == nil {
		f.revoked = map[string]time.Time{}
	}
	f.revoked[tokenID] = expiresAt
	return nil
}

type recordingBroadcaster struct {
	mu      sync.Mutex
	reviews []model.Review
}

func (r *recordingBroadcaster) BroadcastReview(review *model.Review) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reviews = append(r.reviews, *review)
}

type countingMetrics struct {
	mu  sync.Mutex
	ops map[string]int
}

func (c *countingMetrics) CartOperation(op string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ops == nil {
		c.ops = map[string]int{}
	}
	c.ops[op]++
}

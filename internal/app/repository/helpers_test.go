package repository

import (
	"testing"

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

func createItem(t *testing.T, testDB *gorm.DB, title, author, price string) *model.CatalogItem {
	item := &model.CatalogItem{
		Title:     title,
		Author:    author,
		Publisher: "Test Press",
		Price:     price,
	}
	require.NoError(t, testDB.Create(item).Error)
	return item
}

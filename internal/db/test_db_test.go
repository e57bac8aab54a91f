package db

import (
	"testing"

	"github.com/ikkim/bookshelf-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupTestDB_SeedsRoles(t *testing.T) {
	conn, err := SetupTestDB()
	require.NoError(t, err)
	defer CleanupTestDB(conn)

	var roles []model.Role
	require.NoError(t, conn.Order("id").Find(&roles).Error)
	require.Len(t, roles, 2)
	assert.Equal(t, model.RoleNameUser, roles[0].Name)
	assert.Equal(t, model.RoleNameAdmin, roles[1].Name)

	require.NoError(t, SeedRoles(conn))
	var count int64
	require.NoError(t, conn.Model(&model.Role{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestTruncateAllTables_KeepsRoles(t *testing.T) {
	conn, err := SetupTestDB()
	require.NoError(t, err)
	defer CleanupTestDB(conn)

	require.NoError(t, conn.Create(&model.User{Login: "a", Email: "a@example.com", PasswordHash: "x", RoleID: 1}).Error)
	require.NoError(t, conn.Create(&model.CatalogItem{Title: "A", Price: "1"}).Error)

	require.NoError(t, TruncateAllTables(conn))

	var users, items, roles int64
	conn.Model(&model.User{}).Count(&users)
	conn.Model(&model.CatalogItem{}).Count(&items)
	conn.Model(&model.Role{}).Count(&roles)
	assert.Zero(t, users)
	assert.Zero(t, items)
	assert.EqualValues(t, 2, roles)
}

package repository

import (
	"testing"

	"github.com/ikkim/bookshelf-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserRepository_CreateAndFind(t *testing.T) {
	testDB := setupTestDB(t)
	repo := NewUserRepository(testDB)

	user := &model.User{Login: "Alice", Email: "Alice@Example.com", PasswordHash: "hash", RoleID: model.RoleIDUser}
	require.NoError(t, repo.Create(user))
	assert.NotZero(t, user.ID)

	byID, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	require.NotNil(t, byID.Role)
	assert.Equal(t, model.RoleNameUser, byID.Role.Name)

	byLogin, err := repo.FindByLogin("alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byLogin.ID)

	byEmail, err := repo.FindByEmail("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = repo.FindByLogin("bob")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_UniqueLoginAndEmail(t *testing.T) {
	testDB := setupTestDB(t)
	repo := NewUserRepository(testDB)
	createUser(t, testDB, "alice")

	err := repo.Create(&model.User{Login: "alice", Email: "other@example.com", PasswordHash: "x", RoleID: 1})
	assert.Error(t, err)

	err = repo.Create(&model.User{Login: "other", Email: "alice@example.com", PasswordHash: "x", RoleID: 1})
	assert.Error(t, err)
}

func TestUserRepository_Update(t *testing.T) {
	testDB := setupTestDB(t)
	repo := NewUserRepository(testDB)
	user := createUser(t, testDB, "alice")

	rows, err := repo.Update(&model.User{ID: user.ID, Login: "alice2", Email: "a2@example.com", RoleID: model.RoleIDAdmin, PasswordHash: "ignored"}, false)
	require.NoError(t, err)
	assert.EqualValues(t, 1, rows)

	found, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice2", found.Login)
	assert.Equal(t, model.RoleIDAdmin, found.RoleID)
	assert.Equal(t, "hash", found.PasswordHash)

	_, err = repo.Update(&model.User{ID: user.ID, Login: "alice2", Email: "a2@example.com", RoleID: model.RoleIDAdmin, PasswordHash: "new-hash"}, true)
	require.NoError(t, err)
	found, err = repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", found.PasswordHash)

	rows, err = repo.Update(&model.User{ID: 9999, Login: "ghost", Email: "g@example.com", RoleID: 1}, false)
	require.NoError(t, err)
	assert.Zero(t, rows)
}

func TestUserRepository_LockByID(t *testing.T) {
	testDB := setupTestDB(t)
	user := createUser(t, testDB, "alice")

	err := testDB.Transaction(func(tx *gorm.DB) error {
		locked, err := NewUserRepository(testDB).WithTx(tx).LockByID(user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.ID, locked.ID)
		return nil
	})
	require.NoError(t, err)
}

func TestUserRepository_DeleteAndRoles(t *testing.T) {
	testDB := setupTestDB(t)
	repo := NewUserRepository(testDB)
	user := createUser(t, testDB, "alice")

	rows, err := repo.Delete(user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, rows)

	rows, err = repo.Delete(user.ID)
	require.NoError(t, err)
	assert.Zero(t, rows)

	roles, err := repo.FindRoles()
	require.NoError(t, err)
	assert.Len(t, roles, 2)

	ok, err := repo.RoleExists(model.RoleIDAdmin)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.RoleExists(42)
	require.NoError(t, err)
	assert.False(t, ok)
}

//go:build integration
// +build integration

package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ikkim/bookshelf-backend/internal/app/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

func setupPostgres(t *testing.T) *gorm.DB {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("bookshelf"),
		postgres.WithUsername("bookshelf"),
		postgres.WithPassword("bookshelf"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	conn, err := Open(dsn)
	require.NoError(t, err)
	require.NoError(t, Migrate(conn))
	return conn
}

func TestPostgres_SchemaAndDeleteRules(t *testing.T) {
	conn := setupPostgres(t)

	var roles []model.Role
	require.NoError(t, conn.Order("id").Find(&roles).Error)
	require.Len(t, roles, 2)
	assert.Equal(t, model.RoleNameAdmin, roles[1].Name)

	// Seeding twice is harmless.
	require.NoError(t, SeedRoles(conn))

	user := model.User{Login: "reader", Email: "reader@example.com", PasswordHash: "x", RoleID: model.RoleIDUser}
	require.NoError(t, conn.Create(&user).Error)

	item := model.CatalogItem{Title: "Dune", Author: "Herbert", Price: "9.99"}
	require.NoError(t, conn.Create(&item).Error)

	order := model.Order{UserID: user.ID, Status: model.OrderStatusOpen, TotalSum: decimal.RequireFromString("19.98")}
	require.NoError(t, conn.Create(&order).Error)
	require.NoError(t, conn.Create(&model.OrderLine{OrderID: order.ID, ProductID: item.ID, Count: 2}).Error)

	t.Run("unique order line per product", func(t *testing.T) {
		err := conn.Create(&model.OrderLine{OrderID: order.ID, ProductID: item.ID, Count: 1}).Error
		var pgErr *pgconn.PgError
		require.True(t, errors.As(err, &pgErr))
		assert.Equal(t, "23505", pgErr.Code)
	})

	t.Run("referenced catalog item is restricted", func(t *testing.T) {
		err := conn.Delete(&model.CatalogItem{}, item.ID).Error
		var pgErr *pgconn.PgError
		require.True(t, errors.As(err, &pgErr))
		assert.Equal(t, "23503", pgErr.Code)
	})

	t.Run("order delete cascades to lines", func(t *testing.T) {
		require.NoError(t, conn.Delete(&model.Order{}, order.ID).Error)
		var n int64
		require.NoError(t, conn.Model(&model.OrderLine{}).Where("order_id = ?", order.ID).Count(&n).Error)
		assert.Zero(t, n)
	})

	t.Run("numeric price sort", func(t *testing.T) {
		require.NoError(t, conn.Create(&model.CatalogItem{Title: "B", Price: "100"}).Error)
		require.NoError(t, conn.Create(&model.CatalogItem{Title: "C", Price: "20.5"}).Error)

		var items []model.CatalogItem
		require.NoError(t, conn.Order("CAST(price AS DECIMAL) ASC").Find(&items).Error)
		require.Len(t, items, 3)
		assert.Equal(t, []string{"9.99", "20.5", "100"}, []string{items[0].Price, items[1].Price, items[2].Price})
	})
}

package database

import (
	"academy/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("oracle", "x")
	assert.Error(t, err)
}

func TestMigrateAndSeedRBAC(t *testing.T) {
	db, err := Open("sqlite", "file::memory:")
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	require.NoError(t, SeedRBAC(db))
	require.NoError(t, SeedRBAC(db))

	var roles []models.Role
	require.NoError(t, db.Preload("Permissions").Order("name").Find(&roles).Error)
	require.Len(t, roles, 3)

	var permCount int64
	require.NoError(t, db.Model(&models.Permission{}).Count(&permCount).Error)

	byName := map[string]models.Role{}
	for _, r := range roles {
		assert.True(t, r.IsSystem, r.Name)
		byName[r.Name] = r
	}
	assert.Len(t, byName[models.RoleAdmin].Permissions, int(permCount))
	assert.Len(t, byName[models.RolePractitioner].Permissions, 3)
	assert.Equal(t, models.RolePractitioner, DefaultRoleName())
}

func TestSeedAdmin(t *testing.T) {
	db, err := Open("sqlite", "file::memory:")
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	require.NoError(t, SeedRBAC(db))

	require.NoError(t, SeedAdmin(db, "", "", bcrypt.MinCost))
	require.NoError(t, SeedAdmin(db, "Root@Example.com", "s3cretpass", bcrypt.MinCost))
	require.NoError(t, SeedAdmin(db, "root@example.com", "other", bcrypt.MinCost))

	var users []models.User
	require.NoError(t, db.Preload("Profile.Role").Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "root@example.com", users[0].Email)
	assert.Equal(t, models.RoleAdmin, users[0].Profile.Role.Name)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users[0].Password), []byte("s3cretpass")))
}

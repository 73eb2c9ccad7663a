package database

import (
	"academy/logger"
	"academy/models"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed rbac.yaml
var rbacYAML []byte

type rbacSpec struct {
	Permissions []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
	} `yaml:"permissions"`
	Roles []struct {
		Name        string   `yaml:"name"`
		Description string   `yaml:"description"`
		Default     bool     `yaml:"default"`
		Permissions []string `yaml:"permissions"`
	} `yaml:"roles"`
}

func loadRBAC() (rbacSpec, error) {
	var spec rbacSpec
	if err := yaml.Unmarshal(rbacYAML, &spec); err != nil {
		return spec, fmt.Errorf("parse rbac seed: %w", err)
	}
	return spec, nil
}

// DefaultRoleName is the role given to self-registered users.
func DefaultRoleName() string {
	spec, err := loadRBAC()
	if err == nil {
		for _, r := range spec.Roles {
			if r.Default {
				return r.Name
			}
		}
	}
	return models.RolePractitioner
}

// SeedRBAC creates the built-in roles and permissions. It is idempotent and
// never removes grants added by an admin.
func SeedRBAC(db *gorm.DB) error {
	spec, err := loadRBAC()
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		byName := make(map[string]models.Permission, len(spec.Permissions))
		for _, p := range spec.Permissions {
			perm := models.Permission{Name: p.Name}
			if err := tx.Where(models.Permission{Name: p.Name}).
				Attrs(models.Permission{Description: p.Description}).
				FirstOrCreate(&perm).Error; err != nil {
				return err
			}
			byName[p.Name] = perm
		}

		for _, r := range spec.Roles {
			role := models.Role{Name: r.Name}
			if err := tx.Where(models.Role{Name: r.Name}).
				Attrs(models.Role{Description: r.Description, IsSystem: true}).
				FirstOrCreate(&role).Error; err != nil {
				return err
			}

			var grants []models.RolePermission
			for _, name := range r.Permissions {
				if name == "*" {
					for _, p := range byName {
						grants = append(grants, models.RolePermission{RoleID: role.ID, PermissionID: p.ID})
					}
					continue
				}
				p, ok := byName[name]
				if !ok {
					return fmt.Errorf("role %s references unknown permission %s", r.Name, name)
				}
				grants = append(grants, models.RolePermission{RoleID: role.ID, PermissionID: p.ID})
			}
			if len(grants) == 0 {
				continue
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&grants).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SeedAdmin creates the bootstrap admin account when both credentials are set
// and no user with that email exists yet.
func SeedAdmin(db *gorm.DB, email, password string, cost int) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}

	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	var role models.Role
	if err := db.Where("name = ?", models.RoleAdmin).First(&role).Error; err != nil {
		return fmt.Errorf("admin role missing: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		user := models.User{Name: "Administrator", Email: email, Password: string(hashed), IsActive: true}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		profile := models.Profile{UserID: user.ID, FirstName: "Administrator", RoleID: role.ID, MembershipFeePaid: true}
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}
		logger.Log.Info("bootstrap admin created", "user_id", user.ID)
		return nil
	})
}

package adminValidator

import (
	"academy/validators"

	"github.com/gofiber/fiber/v2"
)

type RoleRequest struct {
	Name        string `json:"name" validate:"notblank,min=2,max=64"`
	Description string `json:"description" validate:"max=255"`
}

type RolePermissionsRequest struct {
	PermissionIDs []uint `json:"permissionIds" validate:"required,min=1,dive,min=1"`
}

type PermissionRequest struct {
	Name        string `json:"name" validate:"notblank,min=2,max=128"`
	Description string `json:"description" validate:"max=255"`
}

type UserPatchRequest struct {
	RoleID            *uint `json:"roleId" validate:"omitempty,min=1"`
	MembershipFeePaid *bool `json:"membershipFeePaid"`
	IsActive          *bool `json:"isActive"`
}

type UserListQuery struct {
	validators.Pagination
	Search string `query:"search" validate:"max=120"`
	Role   string `query:"role" validate:"max=64"`
}

type TemplateRequest struct {
	Name     string `json:"name" validate:"notblank,max=120"`
	HTML     string `json:"html" validate:"notblank"`
	IsActive *bool  `json:"isActive"`
}

func SaveRole() fiber.Handler {
	return validators.Body[RoleRequest]("validatedRole")
}

func RolePermissions() fiber.Handler {
	return validators.Body[RolePermissionsRequest]("validatedRolePermissions")
}

func SavePermission() fiber.Handler {
	return validators.Body[PermissionRequest]("validatedPermission")
}

func PatchUser() fiber.Handler {
	return validators.Body[UserPatchRequest]("validatedUserPatch")
}

func ListUsers() fiber.Handler {
	return validators.Query[UserListQuery]("validatedUserList")
}

func SaveTemplate() fiber.Handler {
	return validators.Body[TemplateRequest]("validatedTemplate")
}

package middleware

import (
	"academy/apperr"
	"academy/config"
	"academy/database"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

// SessionClaims is the payload of the session token.
type SessionClaims struct {
	UserID uint   `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// GenerateJWT signs a session token for the user
func GenerateJWT(userID uint, email string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(config.AppConfig.SessionTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.JWTKey))
}

func parseJWT(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.AppConfig.JWTKey), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	if claims.UserID == 0 {
		return nil, errors.New("invalid token payload")
	}
	return claims, nil
}

// SetSessionCookie stores the session token in an HttpOnly cookie.
func SetSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     config.AppConfig.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(config.AppConfig.SessionTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   c.Protocol() == "https",
	})
}

func ClearSessionCookie(c *fiber.Ctx) {
	c.ClearCookie(config.AppConfig.SessionCookieName)
}

func sessionToken(c *fiber.Ctx) string {
	if authHeader := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(authHeader[len("Bearer "):])
	}
	return c.Cookies(config.AppConfig.SessionCookieName)
}

type sessionRow struct {
	UserID   uint
	IsActive bool
	RoleID   uint
	RoleName string
}

// JWTMiddleware authenticates the session and stores userId, roleId and
// roleName in the request locals.
func JWTMiddleware(c *fiber.Ctx) error {
	tokenString := sessionToken(c)
	if tokenString == "" {
		return ErrorResponse(c, apperr.Unauthorized("Missing session!"))
	}

	claims, err := parseJWT(tokenString)
	if err != nil {
		return ErrorResponse(c, apperr.Unauthorized("Invalid or expired session!"))
	}

	var row sessionRow
	err = database.Database.Db.Table("users").
		Select("users.id AS user_id, users.is_active, COALESCE(profiles.role_id, 0) AS role_id, COALESCE(roles.name, '') AS role_name").
		Joins("LEFT JOIN profiles ON profiles.user_id = users.id").
		Joins("LEFT JOIN roles ON roles.id = profiles.role_id").
		Where("users.id = ?", claims.UserID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorResponse(c, apperr.Unauthorized("User not found!"))
	}
	if err != nil {
		return ErrorResponse(c, err)
	}
	if !row.IsActive {
		return ErrorResponse(c, apperr.Forbidden("Account is disabled!"))
	}

	c.Locals("userId", row.UserID)
	c.Locals("roleId", row.RoleID)
	c.Locals("roleName", row.RoleName)
	return c.Next()
}

// UserID returns the authenticated user id set by JWTMiddleware.
func UserID(c *fiber.Ctx) (uint, error) {
	id, ok := c.Locals("userId").(uint)
	if !ok || id == 0 {
		return 0, apperr.Unauthorized("Unauthorized!")
	}
	return id, nil
}

func RoleName(c *fiber.Ctx) string {
	name, _ := c.Locals("roleName").(string)
	return name
}

// HasRole reports whether the session role is one of roles.
func HasRole(c *fiber.Ctx, roles ...string) bool {
	current := RoleName(c)
	for _, r := range roles {
		if r == current {
			return true
		}
	}
	return false
}

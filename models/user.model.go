package models

import (
	"time"
)

// Base replaces gorm.Model for rows that are hard-deleted, so unique indexes
// stay usable after a delete.
type Base struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type User struct {
	Base
	Name                string     `gorm:"default:''" json:"name"`
	Email               string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password            string     `gorm:"not null" json:"-"`
	IsActive            bool       `gorm:"not null" json:"isActive"`
	LastLogin           *time.Time `json:"lastLogin"`
	FailedLoginAttempts int        `gorm:"default:0" json:"-"`
	LastFailedLogin     *time.Time `json:"-"`
	IsBlocked           bool       `gorm:"not null" json:"-"`
	BlockedUntil        *time.Time `json:"-"`
	Profile             *Profile   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`
}

// Profile is one-to-one with User and carries role, membership and the
// certificate gate fields.
type Profile struct {
	Base
	UserID                 uint       `gorm:"uniqueIndex;not null" json:"userId"`
	FirstName              string     `json:"firstName"`
	LastName               string     `json:"lastName"`
	Phone                  string     `json:"phone"`
	Bio                    string     `gorm:"type:text" json:"bio"`
	RoleID                 uint       `gorm:"index;not null" json:"roleId"`
	Role                   *Role      `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	MembershipFeePaid      bool       `gorm:"not null" json:"membershipFeePaid"`
	TestCompleted          bool       `gorm:"not null" json:"testCompleted"`
	TestScore              *int       `json:"testScore"`
	TestPassedAt           *time.Time `json:"testPassedAt"`
	CertificateIssued      bool       `gorm:"not null" json:"certificateIssued"`
	CertificateAvailableAt *time.Time `json:"certificateAvailableAt"`
	CertificateNumber      string     `gorm:"index" json:"certificateNumber"`
	CertificateNotified    bool       `gorm:"not null" json:"-"`
}

func (p Profile) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

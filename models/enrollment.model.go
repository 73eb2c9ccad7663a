package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	PaymentPending   = "PENDING"
	PaymentCompleted = "COMPLETED"
	PaymentFailed    = "FAILED"
	PaymentRefunded  = "REFUNDED"
)

// Enrollment is a user's registration in a module and carries all progress
// state. Version guards CompletedSubTopics against lost updates.
type Enrollment struct {
	Base
	UserID             uint           `gorm:"uniqueIndex:idx_enrollment_user_module;not null" json:"userId"`
	ModuleID           uint           `gorm:"uniqueIndex:idx_enrollment_user_module;not null" json:"moduleId"`
	PaymentStatus      string         `gorm:"size:16;not null;default:'PENDING'" json:"paymentStatus"`
	PaymentReference   string         `json:"paymentReference"`
	AmountPaid         float64        `gorm:"default:0" json:"amountPaid"`
	ProgressPercentage int            `gorm:"not null;default:0" json:"progressPercentage"`
	CompletedSubTopics datatypes.JSON `json:"completedSubTopics"`
	ExamDate           *time.Time     `json:"examDate"`
	Version            uint           `gorm:"not null;default:0" json:"version"`
	Module             *Module        `gorm:"foreignKey:ModuleID" json:"module,omitempty"`
	User               *User          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

func (e Enrollment) Paid() bool {
	return e.PaymentStatus == PaymentCompleted
}

type CertificateTemplate struct {
	Base
	Name      string `gorm:"not null" json:"name"`
	HTML      string `gorm:"type:text;not null" json:"html"`
	IsActive  bool   `gorm:"not null" json:"isActive"`
	CreatedBy uint   `json:"createdBy"`
}

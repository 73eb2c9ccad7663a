package models

import (
	"gorm.io/datatypes"
)

// Module is the root of a course.
type Module struct {
	Base
	Title       string  `gorm:"not null" json:"title"`
	Description string  `gorm:"type:text" json:"description"`
	Price       float64 `gorm:"default:0" json:"price"`
	IsActive    bool    `gorm:"not null" json:"isActive"`
	CreatedBy   uint    `gorm:"index" json:"createdBy"`
	Levels      []Level `gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE" json:"levels,omitempty"`
}

type Level struct {
	Base
	ModuleID           uint         `gorm:"index;not null" json:"moduleId"`
	Title              string       `gorm:"not null" json:"title"`
	Description        string       `gorm:"type:text" json:"description"`
	OrderIndex         int          `gorm:"not null;default:0" json:"orderIndex"`
	IsActive           bool         `gorm:"not null" json:"isActive"`
	EstimatedDuration  int          `gorm:"default:0" json:"estimatedDuration"`
	LearningObjectives string       `gorm:"type:text" json:"learningObjectives"`
	Topics             []LevelTopic `gorm:"foreignKey:LevelID;constraint:OnDelete:CASCADE" json:"topics,omitempty"`
	SubTopics          []SubTopic   `gorm:"foreignKey:LevelID;constraint:OnDelete:CASCADE" json:"subTopics,omitempty"`
}

// LevelTopic is an ordered placeholder for a sub-topic a level is meant to
// cover. It is linked to the SubTopic once that has been authored.
type LevelTopic struct {
	Base
	LevelID    uint   `gorm:"index;not null" json:"levelId"`
	Title      string `gorm:"not null" json:"title"`
	OrderIndex int    `gorm:"not null;default:0" json:"orderIndex"`
	SubTopicID *uint  `gorm:"index" json:"subTopicId"`
}

type SubTopic struct {
	Base
	LevelID           uint                        `gorm:"index;not null" json:"levelId"`
	Title             string                      `gorm:"not null" json:"title"`
	Description       string                      `gorm:"type:text" json:"description"`
	OrderIndex        int                         `gorm:"not null;default:0" json:"orderIndex"`
	IsActive          bool                        `gorm:"not null" json:"isActive"`
	EstimatedDuration int                         `gorm:"default:0" json:"estimatedDuration"`
	ReadingMaterial   string                      `gorm:"type:text" json:"readingMaterial"`
	Attachments       datatypes.JSONSlice[string] `json:"attachments"`
	ExternalLinks     datatypes.JSONSlice[string] `json:"externalLinks"`
	Contents          []Content                   `gorm:"foreignKey:SubTopicID;constraint:OnDelete:CASCADE" json:"contents,omitempty"`
}

const (
	ContentVideo       = "VIDEO"
	ContentDocument    = "DOCUMENT"
	ContentQuiz        = "QUIZ"
	ContentAssignment  = "ASSIGNMENT"
	ContentLiveSession = "LIVE_SESSION"
	ContentNotes       = "NOTES"
	ContentStudyGuide  = "STUDY_GUIDE"
	ContentText        = "TEXT"
)

var ContentTypes = []string{
	ContentVideo, ContentDocument, ContentQuiz, ContentAssignment,
	ContentLiveSession, ContentNotes, ContentStudyGuide, ContentText,
}

type Content struct {
	Base
	SubTopicID  uint   `gorm:"index;not null" json:"subTopicId"`
	Title       string `gorm:"not null" json:"title"`
	ContentType string `gorm:"size:32;not null" json:"contentType"`
	ContentURL  string `json:"contentUrl"`
	ContentText string `gorm:"type:text" json:"contentText"`
	Duration    int    `gorm:"default:0" json:"duration"`
	IsRequired  bool   `gorm:"not null" json:"isRequired"`
	IsPublished bool   `gorm:"not null" json:"isPublished"`
	OrderIndex  int    `gorm:"not null;default:0" json:"orderIndex"`
}

package models

import (
	"time"

	"gorm.io/gorm"
)

type Course struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Price       int64  `gorm:"not null" json:"price"` // major currency units
	Currency    string `gorm:"size:3;default:'INR'" json:"currency"`
	CoverURL    string `gorm:"size:512" json:"cover_url"`
	Published   bool   `gorm:"default:false;index" json:"published"`

	Modules []CourseModule `gorm:"foreignKey:CourseID" json:"modules,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Course) TableName() string {
	return "courses"
}

// LectureCount walks the loaded module tree. Zero when modules were not preloaded.
func (c *Course) LectureCount() int {
	n := 0
	for _, m := range c.Modules {
		n += len(m.Lectures)
	}
	return n
}

// CourseModule is an owned child row addressed by its own id, not a nested
// document inside the course.
type CourseModule struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	CourseID uint   `gorm:"not null;index" json:"course_id"`
	Title    string `gorm:"size:255;not null" json:"title"`
	Position int    `gorm:"default:0" json:"position"`

	Lectures []Lecture `gorm:"foreignKey:ModuleID" json:"lectures,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CourseModule) TableName() string {
	return "course_modules"
}

type Lecture struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	ModuleID    uint   `gorm:"not null;index" json:"module_id"`
	Title       string `gorm:"size:255;not null" json:"title"`
	VideoURL    string `gorm:"size:512" json:"video_url"`
	DurationSec int    `gorm:"default:0" json:"duration_sec"`
	Position    int    `gorm:"default:0" json:"position"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Lecture) TableName() string {
	return "lectures"
}

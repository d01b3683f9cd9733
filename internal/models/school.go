package models

import "time"

type School struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SchoolName   string    `gorm:"size:255;not null" json:"schoolName"`
	Address      string    `gorm:"size:512" json:"address"`
	Phone        string    `gorm:"size:32" json:"phone"`
	SessionStart time.Time `json:"sessionStart"`
	SessionEnd   time.Time `json:"sessionEnd"`
	AdminID      uint      `gorm:"uniqueIndex;not null" json:"adminId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (School) TableName() string {
	return "schools"
}

// SchoolOption is the select-box projection of a school.
type SchoolOption struct {
	ID         uint   `json:"id"`
	SchoolName string `json:"schoolName"`
}

package domain

import "time"

// DebtRecord is a student's outstanding assignment. Only IsCompleted changes after creation.
type DebtRecord struct {
	ID              uint      `gorm:"primaryKey"`
	UserID          int64     `gorm:"index;not null"`
	FullName        string    `gorm:"size:100;not null"`
	Group           string    `gorm:"column:group_name;not null"`
	Subject         string    `gorm:"not null"`
	TaskDescription string    `gorm:"not null"`
	IsCompleted     bool      `gorm:"not null;default:false"`
	CreatedAt       time.Time `gorm:"not null"`
	DueDate         time.Time `gorm:"index;not null"`
}

// Admin marks a Telegram user as privileged. UserID is unique at the storage layer.
type Admin struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    int64     `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

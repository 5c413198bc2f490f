package models

import (
	"time"
)

type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Email        string    `gorm:"size:254;uniqueIndex;not null" json:"email"`
	Username     string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	FirstName    string    `gorm:"size:150;not null" json:"first_name"`
	LastName     string    `gorm:"size:150;not null" json:"last_name"`
	PasswordHash string    `gorm:"not null" json:"-"`
	IsStaff      bool      `gorm:"not null;default:false" json:"-"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// Follow is a subscription of User to Author.
type Follow struct {
	ID        uint      `gorm:"primarykey"`
	UserID    uint      `gorm:"not null;uniqueIndex:uniq_follow_user_author"`
	AuthorID  uint      `gorm:"not null;uniqueIndex:uniq_follow_user_author;index"`
	User      User      `gorm:"constraint:OnDelete:CASCADE"`
	Author    User      `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

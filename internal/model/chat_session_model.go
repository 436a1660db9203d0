package model

import "time"

// ChatSession is the persisted conversation record, one row per chat identity.
type ChatSession struct {
	UserId        string    `gorm:"type:text;primaryKey"`
	ArmedStrategy string    `gorm:"type:varchar(32);not null;default:'NONE'"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}

package account

import "time"

// User represents the users table. The core never authenticates; rows
// exist so audit fields (created_by, changed_by) resolve to someone.
type User struct {
	UserID    uint      `gorm:"column:user_id;primaryKey;autoIncrement" json:"user_id,omitempty"`
	Name      string    `gorm:"column:name;type:varchar(128);not null" json:"name"`
	Email     *string   `gorm:"column:email;type:varchar(255);uniqueIndex" json:"email,omitempty"`
	Role      string    `gorm:"column:role;type:varchar(16);not null;default:'customer'" json:"role"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

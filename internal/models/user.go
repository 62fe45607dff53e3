package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User is a registered cultivator. The phone number links the account to the
// Signal messaging identity; commands are rejected until the number has been
// verified with the 6-digit code issued from the profile endpoint.
type User struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Username    string  `gorm:"size:64;not null;uniqueIndex" json:"username"`
	Email       string  `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password    string  `gorm:"not null" json:"-"`
	Role        string  `gorm:"size:20;default:'user'" json:"role"`
	PhoneNumber *string `gorm:"size:20;uniqueIndex" json:"phone_number,omitempty"`

	SignalVerified         bool   `gorm:"default:false" json:"signal_verified"`
	SignalVerificationCode string `gorm:"size:6" json:"-"`

	// NotificationPrefs keys: "achievements", "watering". Missing key = enabled.
	NotificationPrefs datatypes.JSONMap `gorm:"type:jsonb;default:'{}'" json:"notification_prefs"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// NotificationsEnabled reports whether the named notification category is
// enabled for the user. Categories default to enabled when unset.
func (u *User) NotificationsEnabled(category string) bool {
	if u.NotificationPrefs == nil {
		return true
	}
	v, ok := u.NotificationPrefs[category]
	if !ok {
		return true
	}
	enabled, ok := v.(bool)
	if !ok {
		return true
	}
	return enabled
}

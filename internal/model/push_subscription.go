package model

import "time"

// PushSubscription holds the information for a staff browser's push
// subscription. Alerts are broadcast to every registered subscription.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

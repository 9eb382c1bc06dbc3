package model

import "time"

// Reminder is a scheduled medicine notification.
type Reminder struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	MedicineName string    `gorm:"type:text;not null" json:"medicine_name"`
	ReminderTime time.Time `gorm:"index;not null" json:"reminder_time"`
	Phone        *string   `json:"phone"`
	Email        *string   `json:"email"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// ReminderSummary is the listing projection of a Reminder; created_at is
// deliberately left out.
type ReminderSummary struct {
	ID           string    `json:"id"`
	MedicineName string    `json:"medicine_name"`
	ReminderTime time.Time `json:"reminder_time"`
	Phone        *string   `json:"phone"`
	Email        *string   `json:"email"`
}

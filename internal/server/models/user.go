package models

import "time"

type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	// Tunable client settings stored alongside the account.
	VolumeLevel      int
	RefreshFrequency int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// UserSettings is the slice of User exposed on the settings endpoints.
type UserSettings struct {
	VolumeLevel      int `json:"volumeLevel"`
	RefreshFrequency int `json:"refreshFrequency"`
}

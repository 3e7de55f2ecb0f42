package models

import "time"

// DailyProduction is one day of egg collection for a flock.
type DailyProduction struct {
	ID               string     `json:"id"`
	FlockID          string     `json:"flock_id"`
	ProductionDate   Date       `json:"production_date"`
	EggsJumbo        int        `json:"eggs_jumbo"`
	EggsExtraLarge   int        `json:"eggs_extra_large"`
	EggsLarge        int        `json:"eggs_large"`
	EggsMedium       int        `json:"eggs_medium"`
	EggsSmall        int        `json:"eggs_small"`
	EggsDirty        int        `json:"eggs_dirty"`
	EggsBroken       int        `json:"eggs_broken"`
	TotalEggs        int        `json:"total_eggs"`
	HenCount         int        `json:"hen_count"`
	LayingPercentage float64    `json:"laying_percentage"`
	Notes            *string    `json:"notes,omitempty"`
	CreatedAt        *time.Time `json:"created_at,omitempty"`
}

// ProductionSample is the projection the dashboard averages over.
type ProductionSample struct {
	TotalEggs        int     `json:"total_eggs"`
	LayingPercentage float64 `json:"laying_percentage"`
}

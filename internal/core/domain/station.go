package domain

import (
	"time"

	"github.com/google/uuid"
)

type StationCategory string

const (
	CategoryTurf       StationCategory = "turf"
	CategoryPickleball StationCategory = "pickleball"
)

type Station struct {
	ID         uuid.UUID
	Name       string
	Category   StationCategory
	HourlyRate float64
}

type Customer struct {
	ID        uuid.UUID
	Name      string
	Phone     string
	Email     string
	CreatedAt time.Time
}

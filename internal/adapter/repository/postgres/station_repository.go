package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/turf45/courtbook/internal/core/domain"
)

type StationRepository struct {
	db *sql.DB
}

func NewStationRepository(db *sql.DB) *StationRepository {
	return &StationRepository{db: db}
}

func (r *StationRepository) GetByID(ctx context.Context, stationID uuid.UUID) (*domain.Station, error) {
	query := `
	SELECT id, name, category, hourly_rate
	FROM stations
	WHERE id = $1
	`

	var st domain.Station
	err := r.db.QueryRowContext(ctx, query, stationID).Scan(
		&st.ID,
		&st.Name,
		&st.Category,
		&st.HourlyRate,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Resource: "station", ID: stationID.String()}
		}

		return nil, err
	}

	return &st, nil
}

package repository

import (
	"database/sql"
	"fmt"

	"github.com/kioskops/ledger/internal/domain"
)

type LocationRepo struct {
	db *sql.DB
}

func NewLocationRepo(db *sql.DB) *LocationRepo {
	return &LocationRepo{db: db}
}

func (r *LocationRepo) List() ([]domain.Location, error) {
	rows, err := r.db.Query(
		`SELECT id, name, city, state, zip, rent_model, base_rent
		FROM locations ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var locs []domain.Location
	for rows.Next() {
		var l domain.Location
		var model string
		if err := rows.Scan(&l.ID, &l.Name, &l.City, &l.State, &l.Zip, &model, &l.BaseRent); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		l.RentModel = domain.RentModel(model)
		locs = append(locs, l)
	}
	return locs, rows.Err()
}

func (r *LocationRepo) GetByID(id string) (*domain.Location, error) {
	var l domain.Location
	var model string
	err := r.db.QueryRow(
		`SELECT id, name, city, state, zip, rent_model, base_rent
		FROM locations WHERE id = ?`, id,
	).Scan(&l.ID, &l.Name, &l.City, &l.State, &l.Zip, &model, &l.BaseRent)
	if err != nil {
		return nil, err
	}
	l.RentModel = domain.RentModel(model)
	return &l, nil
}

func (r *LocationRepo) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM locations").Scan(&count)
	return count, err
}

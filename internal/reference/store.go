// Package reference serves the read-only population datasets shown next to
// personal analytics and loads them from CSV exports.
package reference

import (
	"context"
	"fmt"

	"github.com/pathakanu/mindwell/internal/model"
	"gorm.io/gorm"
)

// GlobalLimit is the maximum number of country rows returned.
const GlobalLimit = 50

// Store reads and writes the reference tables.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Global returns up to GlobalLimit country rows ordered by country name.
func (s *Store) Global(ctx context.Context) ([]model.GlobalMentalHealthData, error) {
	var rows []model.GlobalMentalHealthData
	if err := s.db.WithContext(ctx).
		Order("country ASC").
		Limit(GlobalLimit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list global reference data: %w", err)
	}
	return rows, nil
}

// Regional returns every sub-national row ordered by state name.
func (s *Store) Regional(ctx context.Context) ([]model.RegionalMentalHealthData, error) {
	var rows []model.RegionalMentalHealthData
	if err := s.db.WithContext(ctx).
		Order("state_name ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list regional reference data: %w", err)
	}
	return rows, nil
}

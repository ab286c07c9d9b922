// internal/store/consultants.go
package store

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"consultation-workers/internal/common/errors"
	"consultation-workers/internal/common/logger"
	"consultation-workers/internal/models"
)

type ConsultantStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewConsultantStore(db *sql.DB, log logger.Logger) *ConsultantStore {
	return &ConsultantStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "consultant-store"}),
	}
}

func (s *ConsultantStore) GetByID(ctx context.Context, id string) (*models.Consultant, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, specialties, regions, languages,
		       active, rating, created_at, updated_at
		FROM consultants WHERE id = $1`, id)

	var c models.Consultant
	var phone sql.NullString
	err := row.Scan(
		&c.ID, &c.Name, &c.Email, &phone,
		pq.Array(&c.Specialties), pq.Array(&c.Regions), pq.Array(&c.Languages),
		&c.Active, &c.Rating, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewConsultantNotFoundError(id)
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("get consultant", err)
	}
	c.Phone = phone.String
	return &c, nil
}

// ListActiveBySpecialty returns active consultants whose specialties cover
// the topic. Used to propose candidates for an open request.
func (s *ConsultantStore) ListActiveBySpecialty(ctx context.Context, specialty string, limit int) ([]models.Consultant, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, phone, specialties, regions, languages,
		       active, rating, created_at, updated_at
		FROM consultants
		WHERE active = true AND $1 = ANY(specialties)
		ORDER BY rating DESC LIMIT $2`, specialty, limit)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("list consultants", err)
	}
	defer rows.Close()

	var result []models.Consultant
	for rows.Next() {
		var c models.Consultant
		var phone sql.NullString
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Email, &phone,
			pq.Array(&c.Specialties), pq.Array(&c.Regions), pq.Array(&c.Languages),
			&c.Active, &c.Rating, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, errors.NewQueryExecutionFailedError("scan consultant row", err)
		}
		c.Phone = phone.String
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("list consultants", err)
	}
	return result, nil
}

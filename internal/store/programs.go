// internal/store/programs.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"

	"consultation-workers/internal/common/errors"
	"consultation-workers/internal/common/logger"
	"consultation-workers/internal/models"
)

// ProgramStore reads support program records. Programs are ingested from
// the public data portal by a separate sync job; this side is read-only
// except for the upsert the sync uses.
type ProgramStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewProgramStore(db *sql.DB, log logger.Logger) *ProgramStore {
	return &ProgramStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "program-store"}),
	}
}

const programColumns = `
	id, name, category, agency, description, eligible_visa_types, location,
	application_url, deadline, metadata, created_at, updated_at`

func (s *ProgramStore) GetByID(ctx context.Context, id string) (*models.SupportProgram, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT`+programColumns+`
		FROM support_programs WHERE id = $1`, id)

	var p models.SupportProgram
	var category, agency, description, location, applicationURL sql.NullString
	var deadline sql.NullTime
	var metadataJSON []byte

	err := row.Scan(
		&p.ID, &p.Name, &category, &agency, &description,
		pq.Array(&p.EligibleVisaTypes), &location, &applicationURL,
		&deadline, &metadataJSON, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewProgramNotFoundError(id)
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("get program", err)
	}
	p.Category = category.String
	p.Agency = agency.String
	p.Description = description.String
	p.Location = location.String
	p.ApplicationURL = applicationURL.String
	if deadline.Valid {
		p.Deadline = &deadline.Time
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &p.Metadata); err != nil {
			p.Metadata = nil
		}
	}
	return &p, nil
}

// Upsert stores a program record fetched from the data portal.
func (s *ProgramStore) Upsert(ctx context.Context, p *models.SupportProgram) error {
	metadataJSON, err := json.Marshal(p.Metadata)
	if err != nil {
		metadataJSON = []byte("{}")
	}
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO support_programs (
			id, name, category, agency, description, eligible_visa_types,
			location, application_url, deadline, metadata, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			agency = EXCLUDED.agency,
			description = EXCLUDED.description,
			eligible_visa_types = EXCLUDED.eligible_visa_types,
			location = EXCLUDED.location,
			application_url = EXCLUDED.application_url,
			deadline = EXCLUDED.deadline,
			metadata = EXCLUDED.metadata,
			updated_at = EXCLUDED.updated_at`,
		p.ID, p.Name, p.Category, p.Agency, p.Description,
		pq.Array(p.EligibleVisaTypes), p.Location, p.ApplicationURL,
		p.Deadline, metadataJSON, now,
	)
	if err != nil {
		return errors.NewQueryExecutionFailedError("upsert program", err)
	}
	return nil
}

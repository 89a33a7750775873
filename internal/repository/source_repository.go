// Package repository declares the persistence ports the usecase layer
// depends on. Concrete implementations live under
// internal/infra/adapter/persistence.
package repository

import (
	"context"

	"github.com/google/uuid"

	"scrapeengine/internal/domain/entity"
)

// SourceRepository is the read/write port for NewsSource rows. Sources are
// created and updated out-of-band (administrative); the scraping engine
// itself only calls GetByName when resolving a trigger_job request.
type SourceRepository interface {
	GetByName(ctx context.Context, name string) (*entity.Source, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Source, error)
	List(ctx context.Context, page, pageSize int) ([]entity.Source, int, error)
	Create(ctx context.Context, s *entity.Source) error
	Update(ctx context.Context, s *entity.Source) error
	Delete(ctx context.Context, id uuid.UUID) error
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pattycroche/storefront/internal/domain/shared"
)

// RootColumns are the identity and bookkeeping columns of an aggregate table.
type RootColumns struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
	Version   int       `gorm:"not null;default:1"`
}

func rootColumns(a shared.BaseAggregateRoot) RootColumns {
	return RootColumns{ID: a.ID, CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt, Version: a.Version}
}

// root rebuilds the aggregate header. Pending events are never stored.
func (r RootColumns) root() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{ID: r.ID, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt, Version: r.Version}
}

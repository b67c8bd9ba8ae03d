package ports

import "context"

// Repository is a generic data-access capability over a single entity type.
// DeleteSoft marks the entity as deleted and returns the tombstoned record;
// Delete removes it physically. Reads exclude soft-deleted entities.
type Repository[T any] interface {
	GetAll(ctx context.Context) ([]T, error)
	GetByID(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, entity *T) (*T, error)
	Update(ctx context.Context, id string, entity *T) (*T, error)
	Delete(ctx context.Context, id string) error
	DeleteSoft(ctx context.Context, id string) (*T, error)
}

package customer

import (
	"context"
)

// Repository defines read access to customers needed by the operator surface.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Customer, error)
	ListAll(ctx context.Context) ([]*Customer, error) // ordered by name
}

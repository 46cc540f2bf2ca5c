package repository

import (
	"context"
	"fmt"

	"coinflip/database"
	"coinflip/domain/entities"
)

// QualifyingItemRepository implements the QualifyingItemRepository interface.
// Items are not treasury scoped: ownership is global to the deployment.
type QualifyingItemRepository struct {
	q Queryable
}

// NewQualifyingItemRepository creates a new qualifying item repository
func NewQualifyingItemRepository(db *database.DB) *QualifyingItemRepository {
	return &QualifyingItemRepository{q: db.Pool}
}

// NewQualifyingItemRepositoryScoped creates a new qualifying item repository with a transaction
func NewQualifyingItemRepositoryScoped(tx Queryable) *QualifyingItemRepository {
	return &QualifyingItemRepository{q: tx}
}

// HasItem reports whether owner holds any item from collectionID
func (r *QualifyingItemRepository) HasItem(ctx context.Context, owner, collectionID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM qualifying_items WHERE owner = $1 AND collection_id = $2)`

	var exists bool
	if err := r.q.QueryRow(ctx, query, owner, collectionID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check items of %s in %s: %w", owner, collectionID, err)
	}
	return exists, nil
}

// Register records ownership of an item, transferring it if it already had an owner
func (r *QualifyingItemRepository) Register(ctx context.Context, item *entities.QualifyingItem) error {
	if item.Owner == "" {
		return entities.ErrInvalidIdentity
	}

	query := `
		INSERT INTO qualifying_items (owner, collection_id, item_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (collection_id, item_id) DO UPDATE SET owner = EXCLUDED.owner
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query, item.Owner, item.CollectionID, item.ItemID).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to register item %s/%s: %w", item.CollectionID, item.ItemID, err)
	}
	return nil
}

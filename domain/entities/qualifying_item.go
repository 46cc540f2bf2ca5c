package entities

import "time"

// QualifyingItem is an externally issued proof that an account holds an item
// from a collection. Holding one selects the discount fee tier.
type QualifyingItem struct {
	ID           int64     `db:"id"`
	Owner        string    `db:"owner"`
	CollectionID string    `db:"collection_id"`
	ItemID       string    `db:"item_id"`
	CreatedAt    time.Time `db:"created_at"`
}

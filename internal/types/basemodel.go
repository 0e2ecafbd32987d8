package types

import (
	"context"
	"time"
)

// BaseModel carries the audit and sync fields shared by all persisted
// entities. CreatedAt and UpdatedAt are assigned by the record store on
// every successful write; UpdatedAt never moves backward for a given
// identity, which is what makes it usable as an incremental-sync
// watermark.
type BaseModel struct {
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedBy string    `json:"created_by"`
	UpdatedBy string    `json:"updated_by"`
}

// GetDefaultBaseModel returns a BaseModel stamped with the acting user
// from the context. The store overwrites the timestamps on write; the
// values set here only matter for in-memory entities that were never
// persisted.
func GetDefaultBaseModel(ctx context.Context) BaseModel {
	now := time.Now().UTC()
	return BaseModel{
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: GetActorID(ctx),
		UpdatedBy: GetActorID(ctx),
	}
}

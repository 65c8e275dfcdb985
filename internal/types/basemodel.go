package types

import (
	"context"
	"time"
)

// BaseModel carries the audit columns shared by every persisted record.
// Any changes here must be mirrored in cmd/migrate.
type BaseModel struct {
	CreatedAt time.Time `db:"created_at" json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at" bson:"updated_at"`
	CreatedBy string    `db:"created_by" json:"created_by,omitempty" bson:"created_by,omitempty"`
	UpdatedBy string    `db:"updated_by" json:"updated_by,omitempty" bson:"updated_by,omitempty"`
}

func GetDefaultBaseModel(ctx context.Context) BaseModel {
	now := time.Now().UTC()
	return BaseModel{
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: GetUserID(ctx),
		UpdatedBy: GetUserID(ctx),
	}
}

package repository

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"

	"zelia-app/internal/models"
)

func TestUpsertError(t *testing.T) {
	r := &ProgressionRepository{}
	boom := errors.New("connection reset")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"duplicate id", mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}, models.ErrStaleRevision},
		{"no documents", mongo.ErrNoDocuments, models.ErrNotFound},
		{"other", boom, boom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.upsertError(tt.err); !errors.Is(got, tt.want) {
				t.Errorf("upsertError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProgressionRepository_EmptyUserID(t *testing.T) {
	r := &ProgressionRepository{}
	ctx := context.Background()

	if _, err := r.FindByUserID(ctx, ""); !errors.Is(err, models.ErrInvalidID) {
		t.Errorf("FindByUserID(\"\") = %v, want ErrInvalidID", err)
	}
	if _, err := r.Save(ctx, "", models.DefaultProgression()); !errors.Is(err, models.ErrInvalidID) {
		t.Errorf("Save(\"\") = %v, want ErrInvalidID", err)
	}
}

package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"zelia-app/internal/models"
)

const (
	progressionCollection = "progressions"
)

type ProgressionRepository struct {
	col *mongo.Collection
}

func NewProgressionRepository(db *mongo.Database) *ProgressionRepository {
	return &ProgressionRepository{col: db.Collection(progressionCollection)}
}

// FindByUserID returns the raw stored record, unknown fields included.
func (r *ProgressionRepository) FindByUserID(ctx context.Context, userID string) (map[string]interface{}, error) {
	if userID == "" {
		return nil, models.ErrInvalidID
	}

	var doc bson.M
	err := r.col.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if err != nil {
		return nil, r.handleDatabaseError(err)
	}
	delete(doc, "_id")
	delete(doc, "updated_at")

	return doc, nil
}

// Save replaces the record of userID when its stored revision still equals
// p.Revision, and returns the new revision. A record that changed in the
// meantime yields models.ErrStaleRevision.
func (r *ProgressionRepository) Save(ctx context.Context, userID string, p models.Progression) (int64, error) {
	if userID == "" {
		return 0, models.ErrInvalidID
	}

	next := p
	next.Revision = p.Revision + 1
	doc := bson.M(next.Record())
	doc["updated_at"] = time.Now().UTC()

	if p.Revision == 0 {
		filter := bson.M{
			"_id": userID,
			"$or": bson.A{
				bson.M{"revision": bson.M{"$exists": false}},
				bson.M{"revision": 0},
			},
		}
		_, err := r.col.ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(true))
		if err != nil {
			return 0, r.upsertError(err)
		}
		return next.Revision, nil
	}

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": userID, "revision": p.Revision}, doc)
	if err != nil {
		return 0, r.handleDatabaseError(err)
	}
	if res.MatchedCount == 0 {
		return 0, models.ErrStaleRevision
	}

	return next.Revision, nil
}

// upsertError reads a duplicate _id on the first write as a lost race.
func (r *ProgressionRepository) upsertError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return models.ErrStaleRevision
	}
	return r.handleDatabaseError(err)
}

func (r *ProgressionRepository) handleDatabaseError(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.ErrNotFound
	}
	return err
}

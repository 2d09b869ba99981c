package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type QuestionnaireRepository struct {
	col *mongo.Collection
}

func NewQuestionnaireRepository(db *mongo.Database) *QuestionnaireRepository {
	return &QuestionnaireRepository{col: db.Collection("questionnaire_responses")}
}

// HasResponse reports whether userID answered the given questionnaire.
func (r *QuestionnaireRepository) HasResponse(ctx context.Context, userID, questionnaire string) (bool, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{
		"user_id":       userID,
		"questionnaire": questionnaire,
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

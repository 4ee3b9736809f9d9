package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	apperrors "voicenotes/internal/errors"
	"voicenotes/internal/model"
)

const collectionName = "transcription_records"

type mongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository creates a MongoDB-backed record repository
func NewMongoRepository(db *mongo.Database) RecordRepository {
	return &mongoRepository{
		coll: db.Collection(collectionName),
	}
}

// Insert stores a new record. The record is never mutated afterwards.
func (r *mongoRepository) Insert(ctx context.Context, rec *model.TranscriptionRecord) (*model.TranscriptionRecord, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	res, err := r.coll.InsertOne(ctx, rec)
	if err != nil {
		return nil, apperrors.Persistence(err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		rec.ID = oid
	}
	return rec, nil
}

func (r *mongoRepository) List(ctx context.Context, limit, offset int) ([]model.TranscriptionRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, apperrors.Persistence(err)
	}
	defer cursor.Close(ctx)

	records := make([]model.TranscriptionRecord, 0, limit)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, apperrors.Persistence(err)
	}
	return records, nil
}

func (r *mongoRepository) GetByID(ctx context.Context, id string) (*model.TranscriptionRecord, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.Validation("invalid record id format")
	}

	var rec model.TranscriptionRecord
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.NotFound("transcription record")
	}
	if err != nil {
		return nil, apperrors.Persistence(err)
	}
	return &rec, nil
}

func (r *mongoRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperrors.Validation("invalid record id format")
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return apperrors.Persistence(err)
	}
	if res.DeletedCount == 0 {
		return apperrors.NotFound("transcription record")
	}
	return nil
}

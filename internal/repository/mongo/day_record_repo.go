// internal/repository/mongo/day_record_repo.go
package mongo

import (
	"alcyxob/healthera/internal/domain"
	"alcyxob/healthera/internal/repository"
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const dayRecordCollectionName = "day_records"

// mongoDayRecordRepository implements repository.DayRecordRepository
type mongoDayRecordRepository struct {
	collection *mongo.Collection
}

// NewMongoDayRecordRepository creates a new DayRecord repository.
func NewMongoDayRecordRepository(db *mongo.Database) repository.DayRecordRepository {
	return &mongoDayRecordRepository{
		collection: db.Collection(dayRecordCollectionName),
	}
}

// Replace overwrites the record of (EnrollmentID, Date) in a single upsert.
// Absent facets are not stored, so they come back absent.
func (r *mongoDayRecordRepository) Replace(ctx context.Context, record *domain.DayRecord) (*domain.DayRecord, error) {
	if record.EnrollmentID == primitive.NilObjectID || record.Date == "" {
		return nil, errors.New("day record requires enrollmentId and date")
	}
	record.UpdatedAt = time.Now().UTC()

	filter := bson.M{"enrollmentId": record.EnrollmentID, "date": record.Date}
	replacement := *record
	replacement.ID = primitive.NilObjectID // keep the stored _id

	opts := options.FindOneAndReplace().SetUpsert(true).SetReturnDocument(options.After)
	var stored domain.DayRecord
	err := r.collection.FindOneAndReplace(ctx, filter, replacement, opts).Decode(&stored)
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// Get retrieves the record of one date, or repository.ErrNotFound.
func (r *mongoDayRecordRepository) Get(ctx context.Context, enrollmentID primitive.ObjectID, date string) (*domain.DayRecord, error) {
	var record domain.DayRecord
	err := r.collection.FindOne(ctx, bson.M{"enrollmentId": enrollmentID, "date": date}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// ListByEnrollment retrieves every record of an enrollment in date order.
func (r *mongoDayRecordRepository) ListByEnrollment(ctx context.Context, enrollmentID primitive.ObjectID) ([]domain.DayRecord, error) {
	records := []domain.DayRecord{}
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"enrollmentId": enrollmentID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// EnsureDayRecordIndexes creates necessary indexes. Call during startup.
func EnsureDayRecordIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// One record per (enrollment, date); also serves ListByEnrollment
			Keys:    bson.D{{Key: "enrollmentId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}

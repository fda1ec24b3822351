package performance

import (
	"context"
	"time"

	"go-erp/internal/database"
	"go-erp/internal/features/notification"
	"go-erp/internal/workflow"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ReviewRepository interface {
	workflow.StateStore
	notification.PendingSource

	Create(ctx context.Context, review *Review) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Review, error)
	List(ctx context.Context, filter map[string]interface{}, limit, offset int64) ([]Review, int64, error)
}

type ReviewRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewReviewRepository(mongodb *database.MongodbDB) ReviewRepository {
	return &ReviewRepositoryImpl{
		Collection: mongodb.DB.Collection("performance_reviews"),
	}
}

func (r *ReviewRepositoryImpl) Create(ctx context.Context, review *Review) error {
	if review.ID.IsZero() {
		review.ID = primitive.NewObjectID()
	}
	now := time.Now()
	review.CreatedAt = now
	review.UpdatedAt = now
	_, err := r.Collection.InsertOne(ctx, review)
	return err
}

func (r *ReviewRepositoryImpl) FindByID(ctx context.Context, id primitive.ObjectID) (*Review, error) {
	var review Review
	if err := r.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&review); err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepositoryImpl) List(ctx context.Context, filter map[string]interface{}, limit, offset int64) ([]Review, int64, error) {
	query := bson.M{}
	for k, v := range filter {
		query[k] = v
	}

	total, err := r.Collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetLimit(limit).SetSkip(offset).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var reviews []Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (r *ReviewRepositoryImpl) SwapState(ctx context.Context, id primitive.ObjectID, prev, next workflow.State) error {
	res, err := r.Collection.UpdateOne(ctx,
		bson.M{
			"_id":             id,
			"workflow.stage":  prev.Stage,
			"workflow.status": prev.Status,
		},
		bson.M{"$set": bson.M{
			"workflow":   next,
			"updated_at": time.Now(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return workflow.ErrStaleState
	}
	return nil
}

func (r *ReviewRepositoryImpl) PendingApprovals(ctx context.Context) ([]notification.PendingApproval, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{"workflow.status": workflow.StatusPending})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reviews []Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, err
	}

	pending := make([]notification.PendingApproval, 0, len(reviews))
	for _, review := range reviews {
		if review.Workflow.ApproverID == nil {
			continue
		}
		pending = append(pending, notification.PendingApproval{
			Kind:       workflow.KindPerformance,
			RequestID:  review.ID,
			Stage:      review.Workflow.Stage,
			ApproverID: *review.Workflow.ApproverID,
		})
	}
	return pending, nil
}

package leave

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

type LeaveRepository interface {
	workflow.StateStore
	notification.PendingSource

	Create(ctx context.Context, req *LeaveRequest) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*LeaveRequest, error)
	List(ctx context.Context, filter map[string]interface{}, limit, offset int64) ([]LeaveRequest, int64, error)
}

type LeaveRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewLeaveRepository(mongodb *database.MongodbDB) LeaveRepository {
	return &LeaveRepositoryImpl{
		Collection: mongodb.DB.Collection("leave_requests"),
	}
}

func (r *LeaveRepositoryImpl) Create(ctx context.Context, req *LeaveRequest) error {
	if req.ID.IsZero() {
		req.ID = primitive.NewObjectID()
	}
	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now
	_, err := r.Collection.InsertOne(ctx, req)
	return err
}

func (r *LeaveRepositoryImpl) FindByID(ctx context.Context, id primitive.ObjectID) (*LeaveRequest, error) {
	var req LeaveRequest
	if err := r.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *LeaveRepositoryImpl) List(ctx context.Context, filter map[string]interface{}, limit, offset int64) ([]LeaveRequest, int64, error) {
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

	var requests []LeaveRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// SwapState applies a workflow transition as a single-document compare-and-swap
// keyed on the stage/status observed at authorization time, so concurrent
// decisions cannot both land.
func (r *LeaveRepositoryImpl) SwapState(ctx context.Context, id primitive.ObjectID, prev, next workflow.State) error {
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

func (r *LeaveRepositoryImpl) PendingApprovals(ctx context.Context) ([]notification.PendingApproval, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{"workflow.status": workflow.StatusPending})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var requests []LeaveRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}

	pending := make([]notification.PendingApproval, 0, len(requests))
	for _, req := range requests {
		if req.Workflow.ApproverID == nil {
			continue
		}
		pending = append(pending, notification.PendingApproval{
			Kind:       workflow.KindLeave,
			RequestID:  req.ID,
			Stage:      req.Workflow.Stage,
			ApproverID: *req.Workflow.ApproverID,
		})
	}
	return pending, nil
}

package procurement

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

type ProcurementRepository interface {
	workflow.StateStore
	notification.PendingSource

	Create(ctx context.Context, req *ProcurementRequest) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*ProcurementRequest, error)
	List(ctx context.Context, filter map[string]interface{}, limit, offset int64) ([]ProcurementRequest, int64, error)
	ListAll(ctx context.Context, filter map[string]interface{}) ([]ProcurementRequest, error)
}

type ProcurementRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewProcurementRepository(mongodb *database.MongodbDB) ProcurementRepository {
	return &ProcurementRepositoryImpl{
		Collection: mongodb.DB.Collection("procurement_requests"),
	}
}

func (r *ProcurementRepositoryImpl) Create(ctx context.Context, req *ProcurementRequest) error {
	if req.ID.IsZero() {
		req.ID = primitive.NewObjectID()
	}
	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now
	_, err := r.Collection.InsertOne(ctx, req)
	return err
}

func (r *ProcurementRepositoryImpl) FindByID(ctx context.Context, id primitive.ObjectID) (*ProcurementRequest, error) {
	var req ProcurementRequest
	if err := r.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *ProcurementRepositoryImpl) List(ctx context.Context, filter map[string]interface{}, limit, offset int64) ([]ProcurementRequest, int64, error) {
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

	var requests []ProcurementRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// ListAll returns every matching request without pagination, used by the
// spreadsheet export.
func (r *ProcurementRepositoryImpl) ListAll(ctx context.Context, filter map[string]interface{}) ([]ProcurementRequest, error) {
	query := bson.M{}
	for k, v := range filter {
		query[k] = v
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var requests []ProcurementRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *ProcurementRepositoryImpl) SwapState(ctx context.Context, id primitive.ObjectID, prev, next workflow.State) error {
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

func (r *ProcurementRepositoryImpl) PendingApprovals(ctx context.Context) ([]notification.PendingApproval, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{"workflow.status": workflow.StatusPending})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var requests []ProcurementRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}

	pending := make([]notification.PendingApproval, 0, len(requests))
	for _, req := range requests {
		if req.Workflow.ApproverID == nil {
			continue
		}
		pending = append(pending, notification.PendingApproval{
			Kind:       workflow.KindProcurement,
			RequestID:  req.ID,
			Stage:      req.Workflow.Stage,
			ApproverID: *req.Workflow.ApproverID,
		})
	}
	return pending, nil
}

package department

import (
	"context"

	"go-erp/internal/common/models"
	"go-erp/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type DepartmentRepository interface {
	Create(ctx context.Context, dept *models.Department) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Department, error)
	List(ctx context.Context) ([]models.Department, error)
}

type DepartmentRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewDepartmentRepository(mongodb *database.MongodbDB) DepartmentRepository {
	return &DepartmentRepositoryImpl{
		Collection: mongodb.DB.Collection("departments"),
	}
}

func (r *DepartmentRepositoryImpl) Create(ctx context.Context, dept *models.Department) error {
	_, err := r.Collection.InsertOne(ctx, dept)
	return err
}

func (r *DepartmentRepositoryImpl) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Department, error) {
	var dept models.Department
	if err := r.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&dept); err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *DepartmentRepositoryImpl) List(ctx context.Context) ([]models.Department, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var depts []models.Department
	if err := cursor.All(ctx, &depts); err != nil {
		return nil, err
	}
	return depts, nil
}

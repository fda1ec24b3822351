package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"go-erp/internal/common/models"
	"go-erp/internal/config"
	"go-erp/internal/database"
	"go-erp/internal/workflow"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Seeds a small org chart for local development: one department with a
// supervisor, plus hr and cd role holders so every approval chain resolves.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal(err)
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.DBName)
	mongoDB := &database.MongodbDB{DB: db}

	fmt.Println("🌱 Seeding demo org chart...")

	users := mongoDB.DB.Collection("users")
	departments := mongoDB.DB.Collection("departments")

	now := time.Now()
	seedUsers := []models.User{
		{ID: primitive.NewObjectID(), Username: "asha.employee", Email: "asha@example.com", FirstName: "Asha", LastName: "Verma", Role: workflow.RoleEmployee, Status: "active", CreatedAt: now, UpdatedAt: now},
		{ID: primitive.NewObjectID(), Username: "ravi.hod", Email: "ravi@example.com", FirstName: "Ravi", LastName: "Nair", Role: workflow.RoleHOD, Status: "active", CreatedAt: now, UpdatedAt: now},
		{ID: primitive.NewObjectID(), Username: "meena.hr", Email: "meena@example.com", FirstName: "Meena", LastName: "Iyer", Role: workflow.RoleHR, Status: "active", CreatedAt: now, UpdatedAt: now},
		{ID: primitive.NewObjectID(), Username: "vikram.cd", Email: "vikram@example.com", FirstName: "Vikram", LastName: "Singh", Role: workflow.RoleCD, Status: "active", CreatedAt: now, UpdatedAt: now},
	}

	for i := range seedUsers {
		u := &seedUsers[i]
		var existing models.User
		err := users.FindOne(ctx, bson.M{"username": u.Username}).Decode(&existing)
		if err == nil {
			u.ID = existing.ID
			fmt.Printf("  user %s exists, skipping\n", u.Username)
			continue
		}
		if _, err := users.InsertOne(ctx, u); err != nil {
			log.Fatalf("failed to seed user %s: %v", u.Username, err)
		}
		fmt.Printf("  created user %s (%s)\n", u.Username, u.Role)
	}

	supervisor := seedUsers[1].ID
	deptName := "Engineering"
	var existingDept models.Department
	err = departments.FindOne(ctx, bson.M{"name": deptName}).Decode(&existingDept)
	if err == nil {
		fmt.Printf("  department %s exists, skipping\n", deptName)
	} else {
		dept := models.Department{
			ID:           primitive.NewObjectID(),
			Name:         deptName,
			Code:         "ENG",
			SupervisorID: &supervisor,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if _, err := departments.InsertOne(ctx, dept); err != nil {
			log.Fatalf("failed to seed department: %v", err)
		}
		existingDept = dept
		fmt.Printf("  created department %s\n", deptName)
	}

	// Attach the employee and supervisor to the department
	memberIDs := []primitive.ObjectID{seedUsers[0].ID, seedUsers[1].ID}
	if _, err := users.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": memberIDs}},
		bson.M{"$set": bson.M{"department_id": existingDept.ID, "updated_at": time.Now()}},
	); err != nil {
		log.Fatalf("failed to assign department members: %v", err)
	}

	fmt.Println("✅ Seeding complete")
}

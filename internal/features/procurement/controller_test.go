package procurement

import (
	"context"
	"net/http/httptest"
	"testing"

	"go-erp/internal/workflow"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeProcurementService struct {
	lastFilter map[string]interface{}
}

func (f *fakeProcurementService) CreateRequest(ctx context.Context, requesterID, departmentID string, input CreateProcurementInput) (*ProcurementRequest, error) {
	return nil, nil
}

func (f *fakeProcurementService) GetRequest(ctx context.Context, id string) (*ProcurementRequest, error) {
	return nil, nil
}

func (f *fakeProcurementService) ListRequests(ctx context.Context, filter map[string]interface{}, page, limit int64) ([]ProcurementRequest, int64, error) {
	f.lastFilter = filter
	return nil, 0, nil
}

func (f *fakeProcurementService) Approve(ctx context.Context, id string, actor workflow.Actor) (workflow.State, error) {
	return workflow.State{}, nil
}

func (f *fakeProcurementService) Decline(ctx context.Context, id string, actor workflow.Actor) (workflow.State, error) {
	return workflow.State{}, nil
}

func (f *fakeProcurementService) Export(ctx context.Context, filter map[string]interface{}) ([]byte, error) {
	return nil, nil
}

func TestListRequestsParsesRequesterFilter(t *testing.T) {
	svc := &fakeProcurementService{}
	app := fiber.New()
	app.Get("/api/procurement-requests", NewProcurementController(svc).ListRequests)

	requester := primitive.NewObjectID()
	req := httptest.NewRequest(fiber.MethodGet, "/api/procurement-requests?requester_id="+requester.Hex(), nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}

	got, ok := svc.lastFilter["requester_id"].(primitive.ObjectID)
	if !ok {
		t.Fatalf("requester_id filter = %T, want primitive.ObjectID", svc.lastFilter["requester_id"])
	}
	if got != requester {
		t.Fatalf("requester_id filter = %s, want %s", got.Hex(), requester.Hex())
	}
}

func TestListRequestsRejectsMalformedRequesterID(t *testing.T) {
	svc := &fakeProcurementService{}
	app := fiber.New()
	app.Get("/api/procurement-requests", NewProcurementController(svc).ListRequests)

	req := httptest.NewRequest(fiber.MethodGet, "/api/procurement-requests?requester_id=not-a-hex-id", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.StatusCode, fiber.StatusBadRequest)
	}
	if svc.lastFilter != nil {
		t.Fatal("service should not be queried when the filter is malformed")
	}
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/audience-voucher-system/internal/model"
	"github.com/fairyhunter13/audience-voucher-system/internal/service"
	"github.com/fairyhunter13/audience-voucher-system/internal/validator"
)

// mockSegmentService is a mock implementation of SegmentServiceInterface.
type mockSegmentService struct {
	createFn    func(ctx context.Context, req *model.SegmentRequest) (*model.Segment, error)
	updateFn    func(ctx context.Context, id int64, req *model.SegmentRequest) (*model.Segment, error)
	getByIDFn   func(ctx context.Context, id int64) (*model.Segment, error)
	listFn      func(ctx context.Context) ([]model.Segment, error)
	memberIDsFn func(ctx context.Context, id int64) ([]int64, error)
	deleteFn    func(ctx context.Context, id int64) error
}

func (m *mockSegmentService) Create(ctx context.Context, req *model.SegmentRequest) (*model.Segment, error) {
	if m.createFn != nil {
		return m.createFn(ctx, req)
	}
	return &model.Segment{ID: 1, Name: req.Name}, nil
}

func (m *mockSegmentService) Update(ctx context.Context, id int64, req *model.SegmentRequest) (*model.Segment, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, req)
	}
	return &model.Segment{ID: id, Name: req.Name}, nil
}

func (m *mockSegmentService) GetByID(ctx context.Context, id int64) (*model.Segment, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return &model.Segment{ID: id}, nil
}

func (m *mockSegmentService) List(ctx context.Context) ([]model.Segment, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []model.Segment{}, nil
}

func (m *mockSegmentService) MemberIDs(ctx context.Context, id int64) ([]int64, error) {
	if m.memberIDsFn != nil {
		return m.memberIDsFn(ctx, id)
	}
	return []int64{}, nil
}

func (m *mockSegmentService) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func setupSegmentApp(mockSvc *mockSegmentService) *fiber.App {
	app := fiber.New()
	h := NewSegmentHandler(mockSvc, validator.New())
	app.Post("/api/segments", h.CreateSegment)
	app.Get("/api/segments", h.ListSegments)
	app.Get("/api/segments/:id", h.GetSegment)
	app.Get("/api/segments/:id/members", h.GetSegmentMembers)
	app.Put("/api/segments/:id", h.UpdateSegment)
	app.Delete("/api/segments/:id", h.DeleteSegment)
	return app
}

func jsonRequest(method, url, body string) *http.Request {
	req := httptest.NewRequest(method, url, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestCreateSegment_Success(t *testing.T) {
	var captured *model.SegmentRequest
	mockSvc := &mockSegmentService{
		createFn: func(ctx context.Context, req *model.SegmentRequest) (*model.Segment, error) {
			captured = req
			return &model.Segment{ID: 5, Name: req.Name, Filter: req.Filter()}, nil
		},
	}
	app := setupSegmentApp(mockSvc)

	body := `{"name": "big spenders", "min_spend": 100, "credit_card_type": "visa"}`
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/segments", body))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.NotNil(t, captured)
	require.NotNil(t, captured.MinSpend)
	assert.Equal(t, "100", captured.MinSpend.String())
	require.NotNil(t, captured.CreditCardType)
	assert.Equal(t, "visa", *captured.CreditCardType)

	var seg model.Segment
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&seg))
	assert.Equal(t, int64(5), seg.ID)
}

func TestCreateSegment_MissingName(t *testing.T) {
	app := setupSegmentApp(&mockSegmentService{})

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/segments", `{"min_spend": 100}`))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var result map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "invalid request: name is required", result["error"])
}

func TestCreateSegment_BlankName(t *testing.T) {
	app := setupSegmentApp(&mockSegmentService{})

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/segments", `{"name": "   "}`))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var result map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "invalid request: name cannot be whitespace only", result["error"])
}

func TestCreateSegment_InvalidLastLoginOption(t *testing.T) {
	app := setupSegmentApp(&mockSegmentService{})

	body := `{"name": "dormant", "last_login_option": "sometimes"}`
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/segments", body))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var result map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "invalid request: last_login_option must be one of: active inactive", result["error"])
}

func TestCreateSegment_MalformedBody(t *testing.T) {
	app := setupSegmentApp(&mockSegmentService{})

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/segments", `{not json`))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCreateSegment_ServiceError(t *testing.T) {
	mockSvc := &mockSegmentService{
		createFn: func(ctx context.Context, req *model.SegmentRequest) (*model.Segment, error) {
			return nil, errors.New("store unavailable")
		},
	}
	app := setupSegmentApp(mockSvc)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/segments", `{"name": "s"}`))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestUpdateSegment_NotFound(t *testing.T) {
	mockSvc := &mockSegmentService{
		updateFn: func(ctx context.Context, id int64, req *model.SegmentRequest) (*model.Segment, error) {
			return nil, service.ErrSegmentNotFound
		},
	}
	app := setupSegmentApp(mockSvc)

	resp, err := app.Test(jsonRequest(http.MethodPut, "/api/segments/99", `{"name": "s"}`))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestUpdateSegment_InvalidID(t *testing.T) {
	app := setupSegmentApp(&mockSegmentService{})

	resp, err := app.Test(jsonRequest(http.MethodPut, "/api/segments/abc", `{"name": "s"}`))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGetSegment_NotFound(t *testing.T) {
	mockSvc := &mockSegmentService{
		getByIDFn: func(ctx context.Context, id int64) (*model.Segment, error) {
			return nil, service.ErrSegmentNotFound
		},
	}
	app := setupSegmentApp(mockSvc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/segments/99", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetSegmentMembers_Success(t *testing.T) {
	mockSvc := &mockSegmentService{
		memberIDsFn: func(ctx context.Context, id int64) ([]int64, error) {
			return []int64{10, 20, 30}, nil
		},
	}
	app := setupSegmentApp(mockSvc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/segments/7/members", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result model.SegmentMembersResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, int64(7), result.SegmentID)
	assert.Equal(t, []int64{10, 20, 30}, result.CustomerIDs)
}

func TestDeleteSegment_Success(t *testing.T) {
	deletedID := int64(0)
	mockSvc := &mockSegmentService{
		deleteFn: func(ctx context.Context, id int64) error {
			deletedID = id
			return nil
		},
	}
	app := setupSegmentApp(mockSvc)

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/segments/7", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, int64(7), deletedID)
}

func TestDeleteSegment_NotFound(t *testing.T) {
	mockSvc := &mockSegmentService{
		deleteFn: func(ctx context.Context, id int64) error {
			return service.ErrSegmentNotFound
		},
	}
	app := setupSegmentApp(mockSvc)

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/segments/99", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

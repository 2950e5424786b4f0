package order_api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"ms-topup/internal/logger"
	"ms-topup/internal/models"
	"ms-topup/internal/order"
	orderdb "ms-topup/internal/order/db"
	"ms-topup/internal/qr"
	"ms-topup/internal/sse"
	"ms-topup/internal/upload"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newMultipartForm(t *testing.T, buf *bytes.Buffer, fields map[string]string, fileField, fileName string, fileBody []byte) string {
	t.Helper()
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	part, err := w.CreateFormFile(fileField, fileName)
	require.NoError(t, err)
	_, err = part.Write(fileBody)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return w.FormDataContentType()
}

type recordingNotifier struct {
	created []models.Order
	changed []string
}

func (n *recordingNotifier) OrderCreated(order models.Order) {
	n.created = append(n.created, order)
}

func (n *recordingNotifier) StatusChanged(order models.Order, status string) {
	n.changed = append(n.changed, order.OrderID+":"+status)
}

func setupRouter(t *testing.T) (*chi.Mux, *order.OrderService, *recordingNotifier) {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { sqldb.Close() })

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	require.NoError(t, bunDB.ResetModel(context.Background(), (*models.Order)(nil)))

	notifier := &recordingNotifier{}
	service := order.NewOrderService(&orderdb.DB{Bun: bunDB}, notifier)

	uploads, err := upload.NewStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	h := NewHandler(service, uploads, qr.NewGenerator("http://localhost:3000"), logger.NewLogger())
	sseHandler := NewSSEHandler(sse.NewRoomHub(), logger.NewLogger())

	r := chi.NewRouter()
	r.Post("/order", h.CreateOrder)
	r.Get("/orders", h.ListOrders)
	r.Get("/orders/{id}/qr", h.TrackingQR)
	r.Get("/admin/orders", h.ListAllOrders)
	r.Post("/admin/orders/{id}/status", h.UpdateStatus)
	r.Get("/events/{room}", sseHandler.HandleRoomEvents)

	return r, service, notifier
}

func TestCreateOrderJSON(t *testing.T) {
	router, _, notifier := setupRouter(t)

	body, _ := json.Marshal(models.OrderRequest{
		Email:       "a@b.com",
		GameID:      "123",
		PackageName: "100 Diamonds",
		Price:       5,
	})
	req := httptest.NewRequest(http.MethodPost, "/order", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Message string       `json:"message"`
		Order   models.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, models.StatusPending, resp.Order.Status)
	assert.Equal(t, "a@b.com", resp.Order.UserEmail)
	assert.False(t, resp.Order.CreatedAt.IsZero())
	require.Len(t, notifier.created, 1)
}

func TestCreateOrderMultipartWithScreenshot(t *testing.T) {
	router, _, _ := setupRouter(t)

	var buf bytes.Buffer
	form := newMultipartForm(t, &buf, map[string]string{
		"email":       "a@b.com",
		"gameId":      "123",
		"packageName": "100 Diamonds",
		"price":       "5",
	}, "paymentScreenshot", "proof image.png", []byte("fake-png"))

	req := httptest.NewRequest(http.MethodPost, "/order", &buf)
	req.Header.Set("Content-Type", form)
	req.Host = "shop.example.com"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Order models.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Order.PaymentScreenshot, "http://shop.example.com/uploads/")
	assert.Contains(t, resp.Order.PaymentScreenshot, "proof-image.png")
}

func TestCreateOrderIgnoresClientStatus(t *testing.T) {
	router, _, _ := setupRouter(t)

	// A client trying to smuggle in a status label still gets pending.
	req := httptest.NewRequest(http.MethodPost, "/order",
		bytes.NewReader([]byte(`{"email":"a@b.com","status":"completed"}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Order models.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.StatusPending, resp.Order.Status)
}

func TestListOrdersEmptyEmail(t *testing.T) {
	router, _, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestListOrdersUnknownEmail(t *testing.T) {
	router, _, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/orders?email=nobody@nowhere.com", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestUpdateStatusFlow(t *testing.T) {
	router, service, notifier := setupRouter(t)

	created, err := service.CreateOrder(models.OrderRequest{Email: "a@b.com"}, "")
	require.NoError(t, err)

	url := fmt.Sprintf("/admin/orders/%s/status", created.OrderID)
	req := httptest.NewRequest(http.MethodPost, url, bytes.NewReader([]byte(`{"status":"completed"}`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Message string       `json:"message"`
		Order   models.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Status updated", resp.Message)
	assert.Equal(t, "completed", resp.Order.Status)
	require.NotNil(t, resp.Order.UpdatedAt)

	assert.Contains(t, notifier.changed, created.OrderID+":completed")
}

func TestUpdateStatusMissingOrder(t *testing.T) {
	router, _, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/admin/orders/missing/status",
		bytes.NewReader([]byte(`{"status":"completed"}`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Order not found", body["error"])
}

func TestUpdateStatusEmpty(t *testing.T) {
	router, service, _ := setupRouter(t)

	created, err := service.CreateOrder(models.OrderRequest{Email: "a@b.com"}, "")
	require.NoError(t, err)

	url := fmt.Sprintf("/admin/orders/%s/status", created.OrderID)
	req := httptest.NewRequest(http.MethodPost, url, bytes.NewReader([]byte(`{"status":""}`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTrackingQR(t *testing.T) {
	router, service, _ := setupRouter(t)

	created, err := service.CreateOrder(models.OrderRequest{Email: "a@b.com"}, "")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/orders/"+created.OrderID+"/qr", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	// PNG magic bytes
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
}

func TestTrackingQRMissingOrder(t *testing.T) {
	router, _, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/orders/missing/qr", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

package order_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"ms-topup/internal/logger"
	"ms-topup/internal/models"
	"ms-topup/internal/order"
	"ms-topup/internal/qr"
	"ms-topup/internal/upload"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	OrderService *order.OrderService
	Uploads      *upload.Storage
	QR           *qr.Generator
	Logger       *logger.Logger
}

func NewHandler(orderService *order.OrderService, uploads *upload.Storage, qrGen *qr.Generator, log *logger.Logger) *Handler {
	return &Handler{
		OrderService: orderService,
		Uploads:      uploads,
		QR:           qrGen,
		Logger:       log,
	}
}

// CreateOrder handles the customer submission. Multipart bodies may
// carry a paymentScreenshot file; JSON bodies never do.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req models.OrderRequest
	var proofURL string

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			h.Logger.Error("API", fmt.Sprintf("CreateOrder: failed to parse multipart form: %v", err))
			writeError(w, http.StatusBadRequest, "Invalid form data")
			return
		}
		req = orderRequestFromForm(r)

		file, header, err := r.FormFile("paymentScreenshot")
		if err == nil {
			defer file.Close()
			filename, err := h.Uploads.Save(file, header.Filename)
			if err != nil {
				h.Logger.Error("API", fmt.Sprintf("CreateOrder: failed to store screenshot: %v", err))
				writeError(w, http.StatusInternalServerError, "Server error")
				return
			}
			proofURL = h.Uploads.PublicURL(r, filename)
			h.Logger.Debug("API", fmt.Sprintf("CreateOrder: stored payment screenshot %s", filename))
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.Logger.Error("API", fmt.Sprintf("CreateOrder: failed to decode body: %v", err))
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	created, err := h.OrderService.CreateOrder(req, proofURL)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateOrder: %v", err))
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	h.Logger.LogOrder("CREATE", created.OrderID, fmt.Sprintf("Order submitted by %s", created.UserEmail))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Order submitted successfully",
		"order":   created,
	})
}

// ListOrders returns a customer's order history by email. No email
// means an empty list, matching the storefront's anonymous flow.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeJSON(w, http.StatusOK, []models.Order{})
		return
	}

	orders, err := h.OrderService.ListOrders(email)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListOrders: %v", err))
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// ListAllOrders is the admin dashboard view.
func (h *Handler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.OrderService.ListAllOrders()
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListAllOrders: %v", err))
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// UpdateStatus transitions an order to an admin-supplied label.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.OrderService.UpdateStatus(orderID, body.Status)
	switch {
	case errors.Is(err, order.ErrEmptyStatus):
		writeError(w, http.StatusBadRequest, "Missing status")
		return
	case errors.Is(err, order.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "Order not found")
		return
	case err != nil:
		h.Logger.Error("API", fmt.Sprintf("UpdateStatus: %v", err))
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	h.Logger.LogOrder("STATUS", orderID, fmt.Sprintf("Status updated to %s", body.Status))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Status updated",
		"order":   updated,
	})
}

// TrackingQR serves a PNG QR code that links to the order's tracking
// page.
func (h *Handler) TrackingQR(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	if _, err := h.OrderService.GetOrder(orderID); err != nil {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}

	png, err := h.QR.TrackingPNG(orderID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("TrackingQR: %v", err))
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

func orderRequestFromForm(r *http.Request) models.OrderRequest {
	price, _ := strconv.ParseFloat(r.FormValue("price"), 64)
	return models.OrderRequest{
		Email:         r.FormValue("email"),
		GameID:        r.FormValue("gameId"),
		Username:      r.FormValue("username"),
		ServerID:      r.FormValue("serverId"),
		PackageName:   r.FormValue("packageName"),
		Price:         price,
		PaymentMethod: r.FormValue("paymentMethod"),
		TransactionID: r.FormValue("transactionId"),
		OrderNote:     r.FormValue("orderNote"),
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

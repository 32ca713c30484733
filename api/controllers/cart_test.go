package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	cartsvc "github.com/foodgo/foodgo-backend/internal/cart"
	pkgerrors "github.com/foodgo/foodgo-backend/pkg/errors"
)

type stubCartService struct {
	cart       *cartsvc.CartDTO
	err        error
	lastAdd    cartsvc.AddItemRequest
	lastItemID uuid.UUID
}

func (s *stubCartService) Get(ctx context.Context, email string) (*cartsvc.CartDTO, error) {
	return s.cart, s.err
}

func (s *stubCartService) AddItem(ctx context.Context, req cartsvc.AddItemRequest) (*cartsvc.CartDTO, error) {
	s.lastAdd = req
	return s.cart, s.err
}

func (s *stubCartService) UpdateItem(ctx context.Context, itemID uuid.UUID, req cartsvc.UpdateItemRequest) (*cartsvc.CartDTO, error) {
	s.lastItemID = itemID
	return s.cart, s.err
}

func (s *stubCartService) RemoveItem(ctx context.Context, email string, itemID uuid.UUID) (*cartsvc.CartDTO, error) {
	s.lastItemID = itemID
	return s.cart, s.err
}

func (s *stubCartService) Clear(ctx context.Context, email string) (*cartsvc.CartDTO, error) {
	return s.cart, s.err
}

func withRouteParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestCartGetSuccess(t *testing.T) {
	cart := &cartsvc.CartDTO{ID: uuid.New(), Items: []cartsvc.CartItemDTO{}, Subtotal: decimal.Zero}
	handler := CartGet(&stubCartService{cart: cart}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart?email=eater@example.com", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data cartsvc.CartDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != cart.ID {
		t.Fatalf("unexpected cart id: %s", envelope.Data.ID)
	}
}

func TestCartGetRequiresEmail(t *testing.T) {
	handler := CartGet(&stubCartService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartAddItemSuccess(t *testing.T) {
	cart := &cartsvc.CartDTO{ID: uuid.New()}
	service := &stubCartService{cart: cart}
	handler := CartAddItem(service, nil)

	productID := uuid.New()
	body := fmt.Sprintf(`{"email":"eater@example.com","product_id":"%s","quantity":2}`, productID)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if service.lastAdd.ProductID != productID {
		t.Fatalf("unexpected product id: %s", service.lastAdd.ProductID)
	}
	if service.lastAdd.Quantity != 2 {
		t.Fatalf("unexpected quantity: %d", service.lastAdd.Quantity)
	}
}

func TestCartAddItemRejectsZeroQuantity(t *testing.T) {
	handler := CartAddItem(&stubCartService{}, nil)

	body := fmt.Sprintf(`{"email":"eater@example.com","product_id":"%s","quantity":0}`, uuid.New())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartUpdateItemParsesPathID(t *testing.T) {
	cart := &cartsvc.CartDTO{ID: uuid.New()}
	service := &stubCartService{cart: cart}
	handler := CartUpdateItem(service, nil)

	itemID := uuid.New()
	body := `{"email":"eater@example.com","quantity":5}`
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/cart/items/"+itemID.String(), strings.NewReader(body))
	req = withRouteParam(req, "itemID", itemID.String())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if service.lastItemID != itemID {
		t.Fatalf("unexpected item id: %s", service.lastItemID)
	}
}

func TestCartUpdateItemRejectsBadPathID(t *testing.T) {
	handler := CartUpdateItem(&stubCartService{}, nil)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/cart/items/not-a-uuid", strings.NewReader(`{}`))
	req = withRouteParam(req, "itemID", "not-a-uuid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartRemoveItemNotFound(t *testing.T) {
	handler := CartRemoveItem(&stubCartService{err: pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")}, nil)

	itemID := uuid.New()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/cart/items/"+itemID.String()+"?email=eater@example.com", nil)
	req = withRouteParam(req, "itemID", itemID.String())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

package refund

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/learnhub/learnhub-api/model"
	"github.com/learnhub/learnhub-api/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubGateway struct{}

func (stubGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (string, error) {
	return "order_test123", nil
}

func (stubGateway) Refund(ctx context.Context, paymentID string, amount int64) (string, error) {
	return "rfnd_test123", nil
}

func newTestApp(t *testing.T, userID uint) (*fiber.App, *gorm.DB, *services.CheckoutService) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.Course{}, &model.CartItem{}, &model.WishlistItem{},
		&model.Order{}, &model.Payment{}, &model.Enrollment{},
		&model.Coupon{}, &model.CouponUsage{},
		&model.Wallet{}, &model.WalletTransaction{},
	))

	cfg := services.CheckoutConfig{
		Currency:          "INR",
		EscrowHoldDays:    7,
		RazorpaySecret:    "test_secret",
		BankPayoutPercent: 80,
	}
	coupons := services.NewCouponService(db)
	wallets := services.NewWalletService(db)
	checkout := services.NewCheckoutService(db, coupons, wallets, stubGateway{}, cfg)
	refunds := services.NewRefundService(db, coupons, wallets, stubGateway{}, cfg)

	handler := NewRefundHandler(refunds)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		return c.Next()
	})
	app.Post("/refunds/full", handler.FullRefund)
	app.Post("/refunds/partial", handler.PartialRefund)
	app.Get("/refunds/history", handler.History)

	return app, db, checkout
}

// paidWalletOrder seeds a student, a course and enough wallet balance, then
// runs the real wallet-only checkout so the refund endpoints see a PAID order.
func paidWalletOrder(t *testing.T, db *gorm.DB, checkout *services.CheckoutService) string {
	t.Helper()

	require.NoError(t, db.Create(&model.User{Email: "s@x.dev", Name: "S", Role: model.RoleStudent}).Error)
	require.NoError(t, db.Create(&model.Course{InstructorID: 99, Title: "Go", Price: 50000, Published: true}).Error)
	require.NoError(t, db.Create(&model.Wallet{UserID: 1, Balance: 50000}).Error)

	summary, err := checkout.CreateOrder(context.Background(), 1, []uint{1}, "", true)
	require.NoError(t, err)
	require.True(t, summary.PaidInFull)
	return summary.RazorpayOrderID
}

func doJSON(t *testing.T, app *fiber.App, method, path string, payload interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if payload != nil {
		body, err := json.Marshal(payload)
		require.NoError(t, err)
		reader = bytes.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &envelope))
	return resp.StatusCode, envelope
}

func TestFullRefundEndpoint(t *testing.T) {
	app, db, checkout := newTestApp(t, 1)
	orderRef := paidWalletOrder(t, db, checkout)

	status, envelope := doJSON(t, app, http.MethodPost, "/refunds/full", fiber.Map{
		"order_id":      orderRef,
		"reason":        "changed my mind",
		"refund_method": "wallet",
	})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, envelope["success"])

	var order model.Order
	require.NoError(t, db.First(&order, "razorpay_order_id = ?", orderRef).Error)
	assert.Equal(t, model.OrderStatusRefunded, order.Status)

	var wallet model.Wallet
	require.NoError(t, db.First(&wallet, "user_id = ?", 1).Error)
	assert.Equal(t, int64(50000), wallet.Balance)
}

func TestFullRefundEndpointRejectsUnknownMethod(t *testing.T) {
	app, db, checkout := newTestApp(t, 1)
	orderRef := paidWalletOrder(t, db, checkout)

	status, envelope := doJSON(t, app, http.MethodPost, "/refunds/full", fiber.Map{
		"order_id":      orderRef,
		"refund_method": "cheque",
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, false, envelope["success"])

	var order model.Order
	require.NoError(t, db.First(&order, "razorpay_order_id = ?", orderRef).Error)
	assert.Equal(t, model.OrderStatusPaid, order.Status)
}

func TestFullRefundEndpointUnknownOrder(t *testing.T) {
	app, _, _ := newTestApp(t, 1)

	status, envelope := doJSON(t, app, http.MethodPost, "/refunds/full", fiber.Map{
		"order_id":      "order_missing",
		"refund_method": "wallet",
	})
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, false, envelope["success"])
}

func TestPartialRefundEndpoint(t *testing.T) {
	app, db, checkout := newTestApp(t, 1)
	orderRef := paidWalletOrder(t, db, checkout)

	status, envelope := doJSON(t, app, http.MethodPost, "/refunds/partial", fiber.Map{
		"order_id":      orderRef,
		"course_id":     1,
		"refund_method": "wallet",
	})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, envelope["success"])

	// Single-course order: the partial refund retires the whole order.
	var order model.Order
	require.NoError(t, db.First(&order, "razorpay_order_id = ?", orderRef).Error)
	assert.Equal(t, model.OrderStatusRefunded, order.Status)
}

func TestRefundHistoryEndpoint(t *testing.T) {
	app, db, checkout := newTestApp(t, 1)
	orderRef := paidWalletOrder(t, db, checkout)

	status, _ := doJSON(t, app, http.MethodPost, "/refunds/full", fiber.Map{
		"order_id":      orderRef,
		"refund_method": "wallet",
	})
	require.Equal(t, fiber.StatusOK, status)

	status, envelope := doJSON(t, app, http.MethodGet, "/refunds/history?order_id="+orderRef, nil)
	assert.Equal(t, fiber.StatusOK, status)

	records, _ := envelope["data"].([]interface{})
	require.Len(t, records, 1)
}

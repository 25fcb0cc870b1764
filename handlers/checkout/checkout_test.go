package checkout

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
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

// newTestApp wires the handler against real services over an in-memory
// database, with the auth middleware replaced by a fixed user id.
func newTestApp(t *testing.T, userID uint) (*fiber.App, *gorm.DB) {
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

	coupons := services.NewCouponService(db)
	wallets := services.NewWalletService(db)
	checkout := services.NewCheckoutService(db, coupons, wallets, stubGateway{}, services.CheckoutConfig{
		Currency:          "INR",
		EscrowHoldDays:    7,
		RazorpaySecret:    "test_secret",
		BankPayoutPercent: 80,
	})

	handler := NewCheckoutHandler(checkout)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		return c.Next()
	})
	app.Post("/checkout/orders", handler.CreateOrder)
	app.Post("/checkout/verify", handler.VerifyPayment)

	return app, db
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) (int, map[string]interface{}) {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &envelope))
	return resp.StatusCode, envelope
}

func sign(orderRef, paymentRef string) string {
	mac := hmac.New(sha256.New, []byte("test_secret"))
	mac.Write([]byte(orderRef + "|" + paymentRef))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestCreateOrderEndpoint(t *testing.T) {
	app, db := newTestApp(t, 1)
	require.NoError(t, db.Create(&model.User{Email: "s@x.dev", Name: "S", Role: model.RoleStudent}).Error)
	require.NoError(t, db.Create(&model.Course{InstructorID: 99, Title: "Go", Price: 150000, Published: true}).Error)

	status, envelope := postJSON(t, app, "/checkout/orders", fiber.Map{
		"course_ids": []uint{1},
	})
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, true, envelope["success"])

	data, _ := envelope["data"].(map[string]interface{})
	assert.Equal(t, "order_test123", data["razorpay_order_id"])
	assert.Equal(t, float64(150000), data["amount"])
}

func TestCreateOrderEndpointPaidInFull(t *testing.T) {
	app, db := newTestApp(t, 1)
	require.NoError(t, db.Create(&model.User{Email: "s@x.dev", Name: "S", Role: model.RoleStudent}).Error)
	require.NoError(t, db.Create(&model.Course{InstructorID: 99, Title: "Go", Price: 50000, Published: true}).Error)
	require.NoError(t, db.Create(&model.Wallet{UserID: 1, Balance: 50000}).Error)

	status, envelope := postJSON(t, app, "/checkout/orders", fiber.Map{
		"course_ids": []uint{1},
		"use_wallet": true,
	})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Order paid in full from wallet", envelope["message"])

	var order model.Order
	require.NoError(t, db.First(&order, "user_id = ?", 1).Error)
	assert.Equal(t, model.OrderStatusPaid, order.Status)
}

func TestCreateOrderEndpointRejectsEmptyCart(t *testing.T) {
	app, _ := newTestApp(t, 1)

	status, envelope := postJSON(t, app, "/checkout/orders", fiber.Map{
		"course_ids": []uint{},
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, false, envelope["success"])
}

func TestVerifyPaymentEndpoint(t *testing.T) {
	app, db := newTestApp(t, 1)
	require.NoError(t, db.Create(&model.User{Email: "s@x.dev", Name: "S", Role: model.RoleStudent}).Error)
	require.NoError(t, db.Create(&model.Course{InstructorID: 99, Title: "Go", Price: 150000, Published: true}).Error)

	status, _ := postJSON(t, app, "/checkout/orders", fiber.Map{"course_ids": []uint{1}})
	require.Equal(t, fiber.StatusCreated, status)

	status, envelope := postJSON(t, app, "/checkout/verify", fiber.Map{
		"razorpay_order_id":   "order_test123",
		"razorpay_payment_id": "pay_abc",
		"razorpay_signature":  sign("order_test123", "pay_abc"),
	})
	assert.Equal(t, fiber.StatusOK, status)

	data, _ := envelope["data"].(map[string]interface{})
	assert.Equal(t, string(model.OrderStatusPaid), data["status"])

	var enrollment model.Enrollment
	require.NoError(t, db.First(&enrollment, "user_id = ? AND course_id = ?", 1, 1).Error)
}

func TestVerifyPaymentEndpointBadSignature(t *testing.T) {
	app, db := newTestApp(t, 1)
	require.NoError(t, db.Create(&model.User{Email: "s@x.dev", Name: "S", Role: model.RoleStudent}).Error)
	require.NoError(t, db.Create(&model.Course{InstructorID: 99, Title: "Go", Price: 150000, Published: true}).Error)

	status, _ := postJSON(t, app, "/checkout/orders", fiber.Map{"course_ids": []uint{1}})
	require.Equal(t, fiber.StatusCreated, status)

	status, envelope := postJSON(t, app, "/checkout/verify", fiber.Map{
		"razorpay_order_id":   "order_test123",
		"razorpay_payment_id": "pay_abc",
		"razorpay_signature":  "deadbeef",
	})
	assert.Equal(t, fiber.StatusBadGateway, status)
	assert.Equal(t, false, envelope["success"])
}

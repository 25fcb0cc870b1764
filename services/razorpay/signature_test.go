package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sign(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyPaymentSignature(t *testing.T) {
	secret := "test_secret"
	signature := sign("order_abc", "pay_xyz", secret)

	assert.True(t, VerifyPaymentSignature("order_abc", "pay_xyz", signature, secret))

	// Any deviation fails.
	assert.False(t, VerifyPaymentSignature("order_abc", "pay_xyz", signature, "other_secret"))
	assert.False(t, VerifyPaymentSignature("order_other", "pay_xyz", signature, secret))
	assert.False(t, VerifyPaymentSignature("order_abc", "pay_other", signature, secret))
	assert.False(t, VerifyPaymentSignature("order_abc", "pay_xyz", "deadbeef", secret))
}

func TestVerifyPaymentSignatureEmptyInputs(t *testing.T) {
	secret := "test_secret"
	assert.False(t, VerifyPaymentSignature("", "pay_xyz", sign("", "pay_xyz", secret), secret))
	assert.False(t, VerifyPaymentSignature("order_abc", "", sign("order_abc", "", secret), secret))
	assert.False(t, VerifyPaymentSignature("order_abc", "pay_xyz", "", secret))
}

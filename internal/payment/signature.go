package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Verifier is the one piece of the payment gateway contract this service
// consumes: callback authenticity. Invoice/order creation on the gateway side
// happens elsewhere.
type Verifier interface {
	Verify(orderID, paymentID, signature string) bool
}

type hmacVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret string) Verifier {
	return &hmacVerifier{secret: []byte(secret)}
}

// Verify checks the supplied signature against HMAC-SHA256 over
// "orderId|paymentId". hmac.Equal keeps the comparison constant-time.
func (v *hmacVerifier) Verify(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

package ports

import "context"

// PaymentGateway is the payment provider as seen by the kiosk.
type PaymentGateway interface {
	// OpenOrder registers a payment of amount for orderRef and returns the
	// provider's transaction reference.
	OpenOrder(ctx context.Context, orderRef string, amount int64) (string, error)

	// VerifySignature checks the provider's proof that paymentRef settled orderRef.
	VerifySignature(ctx context.Context, orderRef, paymentRef, signature string) (bool, error)
}

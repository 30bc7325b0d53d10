package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment methods recorded on payments.method.
const (
	PaymentMethodMomo      = "momo"
	PaymentMethodFreeTrial = "free_trial"
)

// PaymentStatusPaid is the only status a payment row ever carries.
const PaymentStatusPaid = "paid"

// Payment is an immutable record of money received (or a zero-amount trial
// grant). GatewayOrderID is unique and is the deduplication key for gateway
// confirmations.
type Payment struct {
	ID             uint64          `json:"id"`                         // payments.id
	PackageID      uint64          `json:"package_id"`                 // payments.package_id
	CustomerID     uint64          `json:"customer_id"`                // payments.customer_id
	Amount         decimal.Decimal `json:"amount"`                     // payments.amount
	Method         string          `json:"method"`                     // payments.method
	Status         string          `json:"status"`                     // payments.status
	PaidAt         time.Time       `json:"paid_at"`                    // payments.paid_at
	GatewayOrderID *string         `json:"gateway_order_id,omitempty"` // payments.gateway_order_id (nullable)
	GatewayTransID *string         `json:"gateway_trans_id,omitempty"` // payments.gateway_trans_id (nullable)
}

// PaymentView is a payment joined with its package and customer names for
// listings.
type PaymentView struct {
	Payment
	PackageName  string `json:"package_name"`
	CustomerName string `json:"customer_name"`
}

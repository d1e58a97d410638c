package domain

const (
	PaymentPending    = "PENDING"
	PaymentSuccess    = "SUCCESS"
	PaymentFailed     = "FAILED"
	PaymentReconciled = "RECONCILED"
)

// IsSettled reports whether a payment status grants entitlement.
func IsSettled(status string) bool {
	return status == PaymentSuccess || status == PaymentReconciled
}

const (
	ProductCourse  = "COURSE"
	ProductDigital = "DIGITAL_PRODUCT"
	ProductBundle  = "BUNDLE"
	ProductOther   = "OTHER"
)

const (
	GatewayRazorpay = "razorpay"
	GatewayCashfree = "cashfree"
)

const (
	RoleAdmin   = "ADMIN"
	RoleStudent = "STUDENT"
)

// Failure-log contexts, one per workflow step that can log a FailedPayment.
const (
	CtxPaymentProcessing = "payment_processing"
	CtxOrderVerification = "order_verification"
	CtxRefundProcessing  = "refund_processing"
	CtxUserCreation      = "user_creation"
	CtxEmailSending      = "email_sending"
	CtxOrderBump         = "order_bump"
	CtxDatabaseError     = "database_error"
	CtxOther             = "other"
)

const TagDropOff = "DROP_OFF"

// PaymentStatusTags is the mutually exclusive tag family mirrored onto
// CRM contacts: applying one removes the others.
var PaymentStatusTags = []string{PaymentSuccess, PaymentFailed, PaymentReconciled, TagDropOff}

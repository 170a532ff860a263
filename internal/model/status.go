package model

// status.go — typed status domains and their transition tables.
// Every status mutation in the service layer goes through CanTransition;
// an edge missing from the table is rejected, there are no ad-hoc guards.

// Role is the closed set of user roles.
type Role string

const (
	RoleImportador Role = "IMPORTADOR"
	RoleAdmin      Role = "ADMIN"
	RoleCajero     Role = "CAJERO"
)

// ── Request ──────────────────────────────────────────────────────────────────

type RequestStatus string

const (
	RequestDraft     RequestStatus = "DRAFT"
	RequestPending   RequestStatus = "PENDING"
	RequestInReview  RequestStatus = "IN_REVIEW"
	RequestApproved  RequestStatus = "APPROVED"
	RequestRejected  RequestStatus = "REJECTED"
	RequestCancelled RequestStatus = "CANCELLED"
	RequestCompleted RequestStatus = "COMPLETED"
)

var requestTransitions = map[RequestStatus][]RequestStatus{
	RequestDraft:    {RequestPending, RequestCancelled},
	RequestPending:  {RequestInReview, RequestApproved, RequestRejected, RequestCancelled},
	RequestInReview: {RequestPending, RequestApproved, RequestRejected, RequestCancelled},
	// APPROVED re-opens to PENDING only through the accepted quotation being
	// superseded by a new cycle; COMPLETED closes the request with its contract.
	RequestApproved: {RequestCompleted, RequestCancelled},
	// REJECTED, CANCELLED, COMPLETED are terminal.
}

func (s RequestStatus) CanTransition(to RequestStatus) bool {
	return containsStatus(requestTransitions[s], to)
}

func (s RequestStatus) Terminal() bool { return len(requestTransitions[s]) == 0 }

// ── Quotation ────────────────────────────────────────────────────────────────

type QuotationStatus string

const (
	QuotationDraft    QuotationStatus = "DRAFT"
	QuotationSent     QuotationStatus = "SENT"
	QuotationAccepted QuotationStatus = "ACCEPTED"
	QuotationRejected QuotationStatus = "REJECTED"
	QuotationExpired  QuotationStatus = "EXPIRED"
)

var quotationTransitions = map[QuotationStatus][]QuotationStatus{
	QuotationDraft: {QuotationSent, QuotationAccepted, QuotationRejected, QuotationExpired},
	QuotationSent:  {QuotationAccepted, QuotationRejected, QuotationExpired},
}

func (s QuotationStatus) CanTransition(to QuotationStatus) bool {
	return containsStatus(quotationTransitions[s], to)
}

// Editable reports whether a quotation in this status may still be
// mutated or deleted. ACCEPTED/REJECTED/EXPIRED quotations are frozen.
func (s QuotationStatus) Editable() bool {
	return s == QuotationDraft || s == QuotationSent
}

// ── Contract ─────────────────────────────────────────────────────────────────

type ContractStatus string

const (
	ContractDraft            ContractStatus = "DRAFT"
	ContractActive           ContractStatus = "ACTIVE"
	ContractSigned           ContractStatus = "SIGNED"
	ContractPaymentPending   ContractStatus = "PAYMENT_PENDING"
	ContractPaymentReviewed  ContractStatus = "PAYMENT_REVIEWED"
	ContractProviderPaid     ContractStatus = "PROVIDER_PAID"
	ContractPaymentCompleted ContractStatus = "PAYMENT_COMPLETED"
	ContractCompleted        ContractStatus = "COMPLETED"
	ContractCancelled        ContractStatus = "CANCELLED"
)

// The payment pipeline is linear. The only non-forward edge is
// PAYMENT_PENDING → PAYMENT_PENDING: an admin REJECT keeps the contract
// awaiting a fresh proof upload instead of advancing.
var contractTransitions = map[ContractStatus][]ContractStatus{
	ContractDraft:            {ContractActive, ContractCancelled},
	ContractActive:           {ContractSigned, ContractCancelled},
	ContractSigned:           {ContractPaymentPending, ContractCancelled},
	ContractPaymentPending:   {ContractPaymentPending, ContractPaymentReviewed, ContractCancelled},
	ContractPaymentReviewed:  {ContractProviderPaid, ContractCancelled},
	ContractProviderPaid:     {ContractPaymentCompleted, ContractCancelled},
	ContractPaymentCompleted: {ContractCompleted, ContractCancelled},
}

func (s ContractStatus) CanTransition(to ContractStatus) bool {
	return containsStatus(contractTransitions[s], to)
}

func (s ContractStatus) Terminal() bool { return len(contractTransitions[s]) == 0 }

// ── Payment ──────────────────────────────────────────────────────────────────

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "PENDING"
	PaymentInProgress PaymentStatus = "IN_PROGRESS"
	PaymentCompleted  PaymentStatus = "COMPLETED"
	PaymentCancelled  PaymentStatus = "CANCELLED"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:    {PaymentInProgress, PaymentCompleted, PaymentCancelled},
	PaymentInProgress: {PaymentCompleted, PaymentCancelled},
}

func (s PaymentStatus) CanTransition(to PaymentStatus) bool {
	return containsStatus(paymentTransitions[s], to)
}

// PaymentType distinguishes partial from final importer payments.
type PaymentType string

const (
	PaymentTypePartial PaymentType = "PARTIAL"
	PaymentTypeFinal   PaymentType = "FINAL"
)

// ── CashierTransaction ───────────────────────────────────────────────────────

type CashierTxStatus string

const (
	CashierTxPending    CashierTxStatus = "PENDING"
	CashierTxInProgress CashierTxStatus = "IN_PROGRESS"
	CashierTxCompleted  CashierTxStatus = "COMPLETED"
	CashierTxCancelled  CashierTxStatus = "CANCELLED"
)

var cashierTxTransitions = map[CashierTxStatus][]CashierTxStatus{
	CashierTxPending:    {CashierTxInProgress, CashierTxCompleted, CashierTxCancelled},
	CashierTxInProgress: {CashierTxCompleted, CashierTxCancelled},
}

func (s CashierTxStatus) CanTransition(to CashierTxStatus) bool {
	return containsStatus(cashierTxTransitions[s], to)
}

// ── Document ─────────────────────────────────────────────────────────────────

type DocumentType string

const (
	DocComprobantePago       DocumentType = "COMPROBANTE_PAGO"
	DocComprobanteProveedor  DocumentType = "COMPROBANTE_PROVEEDOR"
	DocFactura               DocumentType = "FACTURA"
	DocContrato              DocumentType = "CONTRATO"
	DocRespaldoSolicitud     DocumentType = "RESPALDO_SOLICITUD"
)

func containsStatus[T comparable](list []T, v T) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

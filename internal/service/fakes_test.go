package service_test

// In-memory repository stubs shared by the service tests. They mirror the
// SQL behavior the services rely on (clone-on-write, aggregate sums,
// sequence-backed codes) without a database; DB() returns nil so the
// services run their transaction bodies directly.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"mercury/internal/dto"
	"mercury/internal/model"
	"mercury/internal/repository"
	"mercury/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var errNotFound = errors.New("record not found")

// ── RequestRepository ────────────────────────────────────────────────────────

type stubRequestRepo struct {
	requests map[uuid.UUID]*model.Request
	seq      int
}

func newStubRequestRepo() *stubRequestRepo {
	return &stubRequestRepo{requests: make(map[uuid.UUID]*model.Request)}
}

func (r *stubRequestRepo) Create(_ context.Context, rq *model.Request) error {
	if rq.ID == uuid.Nil {
		rq.ID = uuid.New()
	}
	rq.CreatedAt = time.Now()
	cloned := *rq
	r.requests[rq.ID] = &cloned
	return nil
}

func (r *stubRequestRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Request, error) {
	rq, ok := r.requests[id]
	if !ok {
		return nil, errNotFound
	}
	cloned := *rq
	return &cloned, nil
}

func (r *stubRequestRepo) Update(_ context.Context, rq *model.Request) error {
	if _, ok := r.requests[rq.ID]; !ok {
		return errNotFound
	}
	cloned := *rq
	r.requests[rq.ID] = &cloned
	return nil
}

func (r *stubRequestRepo) UpdateTx(_ *gorm.DB, rq *model.Request) error {
	return r.Update(context.Background(), rq)
}

func (r *stubRequestRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.requests, id)
	return nil
}

func (r *stubRequestRepo) List(_ context.Context, companyID *uuid.UUID, filter dto.RequestFilter) ([]model.Request, int64, error) {
	var results []model.Request
	for _, rq := range r.requests {
		if companyID != nil && rq.CompanyID != *companyID {
			continue
		}
		if filter.Status != "" && string(rq.Status) != filter.Status {
			continue
		}
		results = append(results, *rq)
	}
	return results, int64(len(results)), nil
}

func (r *stubRequestRepo) NextCode(_ context.Context) (string, error) {
	r.seq++
	return fmt.Sprintf("REQ-2026-%05d", r.seq), nil
}

func (r *stubRequestRepo) DB() *gorm.DB { return nil }

var _ repository.RequestRepository = (*stubRequestRepo)(nil)

// ── QuotationRepository ──────────────────────────────────────────────────────

type stubQuotationRepo struct {
	quotations map[uuid.UUID]*model.Quotation
	seq        int
}

func newStubQuotationRepo() *stubQuotationRepo {
	return &stubQuotationRepo{quotations: make(map[uuid.UUID]*model.Quotation)}
}

func (r *stubQuotationRepo) Create(_ context.Context, q *model.Quotation) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	q.CreatedAt = time.Now()
	cloned := *q
	r.quotations[q.ID] = &cloned
	return nil
}

func (r *stubQuotationRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Quotation, error) {
	q, ok := r.quotations[id]
	if !ok {
		return nil, errNotFound
	}
	cloned := *q
	return &cloned, nil
}

func (r *stubQuotationRepo) FindByIDForUpdate(_ *gorm.DB, id uuid.UUID) (*model.Quotation, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubQuotationRepo) Update(_ context.Context, q *model.Quotation) error {
	if _, ok := r.quotations[q.ID]; !ok {
		return errNotFound
	}
	cloned := *q
	r.quotations[q.ID] = &cloned
	return nil
}

func (r *stubQuotationRepo) UpdateTx(_ *gorm.DB, q *model.Quotation) error {
	return r.Update(context.Background(), q)
}

func (r *stubQuotationRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.quotations, id)
	return nil
}

func (r *stubQuotationRepo) ListByRequest(_ context.Context, requestID uuid.UUID) ([]model.Quotation, error) {
	var results []model.Quotation
	for _, q := range r.quotations {
		if q.RequestID == requestID {
			results = append(results, *q)
		}
	}
	return results, nil
}

func (r *stubQuotationRepo) ListAccepted(_ context.Context) ([]model.Quotation, error) {
	var results []model.Quotation
	for _, q := range r.quotations {
		if q.Status == model.QuotationAccepted {
			results = append(results, *q)
		}
	}
	return results, nil
}

func (r *stubQuotationRepo) CountRejectedByRequestTx(_ *gorm.DB, requestID uuid.UUID) (int64, error) {
	var count int64
	for _, q := range r.quotations {
		if q.RequestID == requestID && q.Status == model.QuotationRejected {
			count++
		}
	}
	return count, nil
}

func (r *stubQuotationRepo) ExpireOverdue(_ context.Context, now time.Time) (int64, error) {
	var count int64
	for _, q := range r.quotations {
		if q.Status == model.QuotationSent && now.After(q.ValidUntil) {
			q.Status = model.QuotationExpired
			count++
		}
	}
	return count, nil
}

func (r *stubQuotationRepo) NextCode(_ context.Context) (string, error) {
	r.seq++
	return fmt.Sprintf("COT-2026-%05d", r.seq), nil
}

func (r *stubQuotationRepo) DB() *gorm.DB { return nil }

var _ repository.QuotationRepository = (*stubQuotationRepo)(nil)

// ── ContractRepository ───────────────────────────────────────────────────────

type stubContractRepo struct {
	contracts map[uuid.UUID]*model.Contract
	seq       int
}

func newStubContractRepo() *stubContractRepo {
	return &stubContractRepo{contracts: make(map[uuid.UUID]*model.Contract)}
}

func (r *stubContractRepo) CreateTx(_ *gorm.DB, c *model.Contract) error {
	for _, existing := range r.contracts {
		if existing.QuotationID == c.QuotationID {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now()
	cloned := *c
	r.contracts[c.ID] = &cloned
	return nil
}

func (r *stubContractRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Contract, error) {
	c, ok := r.contracts[id]
	if !ok {
		return nil, errNotFound
	}
	cloned := *c
	return &cloned, nil
}

func (r *stubContractRepo) FindByQuotationID(_ context.Context, quotationID uuid.UUID) (*model.Contract, error) {
	for _, c := range r.contracts {
		if c.QuotationID == quotationID {
			cloned := *c
			return &cloned, nil
		}
	}
	return nil, errNotFound
}

func (r *stubContractRepo) Update(_ context.Context, c *model.Contract) error {
	if _, ok := r.contracts[c.ID]; !ok {
		return errNotFound
	}
	cloned := *c
	r.contracts[c.ID] = &cloned
	return nil
}

func (r *stubContractRepo) UpdateTx(_ *gorm.DB, c *model.Contract) error {
	return r.Update(context.Background(), c)
}

func (r *stubContractRepo) List(_ context.Context, companyID *uuid.UUID, _, _ int) ([]model.Contract, int64, error) {
	var results []model.Contract
	for _, c := range r.contracts {
		if companyID != nil && c.CompanyID != *companyID {
			continue
		}
		results = append(results, *c)
	}
	return results, int64(len(results)), nil
}

func (r *stubContractRepo) NextCode(_ context.Context) (string, error) {
	r.seq++
	return fmt.Sprintf("CON-2026-%05d", r.seq), nil
}

func (r *stubContractRepo) DB() *gorm.DB { return nil }

var _ repository.ContractRepository = (*stubContractRepo)(nil)

// ── PaymentRepository ────────────────────────────────────────────────────────

type stubPaymentRepo struct {
	payments map[uuid.UUID]*model.Payment
	seq      int
}

func newStubPaymentRepo() *stubPaymentRepo {
	return &stubPaymentRepo{payments: make(map[uuid.UUID]*model.Payment)}
}

func (r *stubPaymentRepo) CreateTx(_ *gorm.DB, p *model.Payment) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	cloned := *p
	r.payments[p.ID] = &cloned
	return nil
}

func (r *stubPaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Payment, error) {
	p, ok := r.payments[id]
	if !ok {
		return nil, errNotFound
	}
	cloned := *p
	return &cloned, nil
}

func (r *stubPaymentRepo) FindOpenByContract(_ context.Context, contractID uuid.UUID) (*model.Payment, error) {
	for _, p := range r.payments {
		if p.ContractID == contractID && p.Status != model.PaymentCompleted && p.Status != model.PaymentCancelled {
			cloned := *p
			return &cloned, nil
		}
	}
	return nil, errNotFound
}

func (r *stubPaymentRepo) UpdateTx(_ *gorm.DB, p *model.Payment) error {
	if _, ok := r.payments[p.ID]; !ok {
		return errNotFound
	}
	cloned := *p
	r.payments[p.ID] = &cloned
	return nil
}

func (r *stubPaymentRepo) ListByContract(_ context.Context, contractID uuid.UUID) ([]model.Payment, error) {
	var results []model.Payment
	for _, p := range r.payments {
		if p.ContractID == contractID {
			results = append(results, *p)
		}
	}
	return results, nil
}

func (r *stubPaymentRepo) ListPendingReview(_ context.Context) ([]model.Payment, error) {
	var results []model.Payment
	for _, p := range r.payments {
		if p.Status == model.PaymentPending {
			results = append(results, *p)
		}
	}
	return results, nil
}

func (r *stubPaymentRepo) NextCode(_ context.Context) (string, error) {
	r.seq++
	return fmt.Sprintf("PAG-2026-%05d", r.seq), nil
}

func (r *stubPaymentRepo) DB() *gorm.DB { return nil }

var _ repository.PaymentRepository = (*stubPaymentRepo)(nil)

// ── DocumentRepository ───────────────────────────────────────────────────────

type stubDocumentRepo struct {
	documents map[uuid.UUID]*model.Document
}

func newStubDocumentRepo() *stubDocumentRepo {
	return &stubDocumentRepo{documents: make(map[uuid.UUID]*model.Document)}
}

func (r *stubDocumentRepo) Create(_ context.Context, d *model.Document) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.CreatedAt = time.Now()
	cloned := *d
	r.documents[d.ID] = &cloned
	return nil
}

func (r *stubDocumentRepo) CreateTx(_ *gorm.DB, d *model.Document) error {
	return r.Create(context.Background(), d)
}

func (r *stubDocumentRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Document, error) {
	d, ok := r.documents[id]
	if !ok {
		return nil, errNotFound
	}
	cloned := *d
	return &cloned, nil
}

func (r *stubDocumentRepo) ListByContract(_ context.Context, contractID uuid.UUID) ([]model.Document, error) {
	var results []model.Document
	for _, d := range r.documents {
		if d.ContractID != nil && *d.ContractID == contractID {
			results = append(results, *d)
		}
	}
	return results, nil
}

func (r *stubDocumentRepo) ListByPayment(_ context.Context, paymentID uuid.UUID) ([]model.Document, error) {
	var results []model.Document
	for _, d := range r.documents {
		if d.PaymentID != nil && *d.PaymentID == paymentID {
			results = append(results, *d)
		}
	}
	return results, nil
}

func (r *stubDocumentRepo) ListByRequest(_ context.Context, requestID uuid.UUID) ([]model.Document, error) {
	var results []model.Document
	for _, d := range r.documents {
		if d.RequestID != nil && *d.RequestID == requestID {
			results = append(results, *d)
		}
	}
	return results, nil
}

var _ repository.DocumentRepository = (*stubDocumentRepo)(nil)

// ── CashierRepository ────────────────────────────────────────────────────────

type stubCashierRepo struct {
	accounts     map[uuid.UUID]*model.CashierAccount
	assignments  map[string]bool // cashierID|accountID
	transactions map[uuid.UUID]*model.CashierTransaction
	seq          int
}

func newStubCashierRepo() *stubCashierRepo {
	return &stubCashierRepo{
		accounts:     make(map[uuid.UUID]*model.CashierAccount),
		assignments:  make(map[string]bool),
		transactions: make(map[uuid.UUID]*model.CashierTransaction),
	}
}

func assignKey(cashierID, accountID uuid.UUID) string {
	return cashierID.String() + "|" + accountID.String()
}

func (r *stubCashierRepo) CreateAccount(_ context.Context, a *model.CashierAccount) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	cloned := *a
	r.accounts[a.ID] = &cloned
	return nil
}

func (r *stubCashierRepo) FindAccountByID(_ context.Context, id uuid.UUID) (*model.CashierAccount, error) {
	a, ok := r.accounts[id]
	if !ok {
		return nil, errNotFound
	}
	cloned := *a
	return &cloned, nil
}

func (r *stubCashierRepo) UpdateAccount(_ context.Context, a *model.CashierAccount) error {
	cloned := *a
	r.accounts[a.ID] = &cloned
	return nil
}

func (r *stubCashierRepo) ListAccounts(_ context.Context) ([]model.CashierAccount, error) {
	var results []model.CashierAccount
	for _, a := range r.accounts {
		results = append(results, *a)
	}
	return results, nil
}

func (r *stubCashierRepo) AssignAccount(_ context.Context, assignment *model.CashierAccountAssignment) error {
	key := assignKey(assignment.CashierID, assignment.CashierAccountID)
	if r.assignments[key] {
		return errors.New("duplicate key value violates unique constraint")
	}
	r.assignments[key] = true
	return nil
}

func (r *stubCashierRepo) IsAssigned(_ context.Context, cashierID, accountID uuid.UUID) (bool, error) {
	return r.assignments[assignKey(cashierID, accountID)], nil
}

func (r *stubCashierRepo) ListAssignedAccounts(_ context.Context, cashierID uuid.UUID) ([]model.CashierAccount, error) {
	var results []model.CashierAccount
	for id, a := range r.accounts {
		if r.assignments[assignKey(cashierID, id)] {
			results = append(results, *a)
		}
	}
	return results, nil
}

func (r *stubCashierRepo) CreateTransactionTx(_ *gorm.DB, t *model.CashierTransaction) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.CreatedAt = time.Now()
	cloned := *t
	r.transactions[t.ID] = &cloned
	return nil
}

func (r *stubCashierRepo) FindTransactionByID(_ context.Context, id uuid.UUID) (*model.CashierTransaction, error) {
	t, ok := r.transactions[id]
	if !ok {
		return nil, errNotFound
	}
	cloned := *t
	return &cloned, nil
}

func (r *stubCashierRepo) UpdateTransaction(_ context.Context, t *model.CashierTransaction) error {
	if _, ok := r.transactions[t.ID]; !ok {
		return errNotFound
	}
	cloned := *t
	r.transactions[t.ID] = &cloned
	return nil
}

func (r *stubCashierRepo) ListTransactionsByCashier(_ context.Context, cashierID uuid.UUID) ([]model.CashierTransaction, error) {
	var results []model.CashierTransaction
	for _, t := range r.transactions {
		if t.CashierID == cashierID {
			results = append(results, *t)
		}
	}
	return results, nil
}

func (r *stubCashierRepo) ListTransactionsByQuotation(_ context.Context, quotationID uuid.UUID) ([]model.CashierTransaction, error) {
	var results []model.CashierTransaction
	for _, t := range r.transactions {
		if t.QuotationID == quotationID {
			results = append(results, *t)
		}
	}
	return results, nil
}

func (r *stubCashierRepo) sumForQuotation(quotationID uuid.UUID) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range r.transactions {
		if t.QuotationID == quotationID && t.Status != model.CashierTxCancelled {
			sum = sum.Add(t.AssignedAmountBs)
		}
	}
	return sum
}

func (r *stubCashierRepo) SumAssignedForQuotationTx(_ *gorm.DB, quotationID uuid.UUID) (decimal.Decimal, error) {
	return r.sumForQuotation(quotationID), nil
}

func (r *stubCashierRepo) SumAssignedForQuotation(_ context.Context, quotationID uuid.UUID) (decimal.Decimal, error) {
	return r.sumForQuotation(quotationID), nil
}

func (r *stubCashierRepo) sumForAccountDay(cashierID, accountID uuid.UUID, dayStart, dayEnd time.Time) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range r.transactions {
		if t.CashierID != cashierID || t.CashierAccountID != accountID || t.Status == model.CashierTxCancelled {
			continue
		}
		if t.CreatedAt.Before(dayStart) || !t.CreatedAt.Before(dayEnd) {
			continue
		}
		sum = sum.Add(t.AssignedAmountBs)
	}
	return sum
}

func (r *stubCashierRepo) SumAssignedForAccountDayTx(_ *gorm.DB, cashierID, accountID uuid.UUID, dayStart, dayEnd time.Time) (decimal.Decimal, error) {
	return r.sumForAccountDay(cashierID, accountID, dayStart, dayEnd), nil
}

func (r *stubCashierRepo) SumAssignedForAccountDay(_ context.Context, cashierID, accountID uuid.UUID, dayStart, dayEnd time.Time) (decimal.Decimal, error) {
	return r.sumForAccountDay(cashierID, accountID, dayStart, dayEnd), nil
}

func (r *stubCashierRepo) NextTransactionCode(_ context.Context) (string, error) {
	r.seq++
	return fmt.Sprintf("TRX-2026-%05d", r.seq), nil
}

func (r *stubCashierRepo) DB() *gorm.DB { return nil }

var _ repository.CashierRepository = (*stubCashierRepo)(nil)

// ── UserRepository ───────────────────────────────────────────────────────────

type stubUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cloned := *u
	r.users[u.ID] = &cloned
	return nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cloned := *u
			return &cloned, nil
		}
	}
	return nil, errNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, errNotFound
	}
	cloned := *u
	return &cloned, nil
}

func (r *stubUserRepo) Update(_ context.Context, u *model.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return errNotFound
	}
	cloned := *u
	r.users[u.ID] = &cloned
	return nil
}

func (r *stubUserRepo) List(_ context.Context) ([]model.User, error) {
	var results []model.User
	for _, u := range r.users {
		results = append(results, *u)
	}
	return results, nil
}

func (r *stubUserRepo) ListActiveByRole(_ context.Context, rol model.Role) ([]model.User, error) {
	var results []model.User
	for _, u := range r.users {
		if u.Activo && u.Rol == rol {
			results = append(results, *u)
		}
	}
	return results, nil
}

func (r *stubUserRepo) ListActiveByCompany(_ context.Context, companyID uuid.UUID) ([]model.User, error) {
	var results []model.User
	for _, u := range r.users {
		if u.Activo && u.CompanyID != nil && *u.CompanyID == companyID {
			results = append(results, *u)
		}
	}
	return results, nil
}

func (r *stubUserRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	u, ok := r.users[id]
	if !ok {
		return errNotFound
	}
	u.Activo = false
	return nil
}

func (r *stubUserRepo) Reactivate(_ context.Context, id uuid.UUID) error {
	u, ok := r.users[id]
	if !ok {
		return errNotFound
	}
	u.Activo = true
	return nil
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

// ── CompanyRepository ────────────────────────────────────────────────────────

type stubCompanyRepo struct {
	companies map[uuid.UUID]*model.Company
}

func newStubCompanyRepo() *stubCompanyRepo {
	return &stubCompanyRepo{companies: make(map[uuid.UUID]*model.Company)}
}

func (r *stubCompanyRepo) Create(_ context.Context, c *model.Company) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cloned := *c
	r.companies[c.ID] = &cloned
	return nil
}

func (r *stubCompanyRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Company, error) {
	c, ok := r.companies[id]
	if !ok {
		return nil, errNotFound
	}
	cloned := *c
	return &cloned, nil
}

func (r *stubCompanyRepo) Update(_ context.Context, c *model.Company) error {
	cloned := *c
	r.companies[c.ID] = &cloned
	return nil
}

func (r *stubCompanyRepo) List(_ context.Context) ([]model.Company, error) {
	var results []model.Company
	for _, c := range r.companies {
		results = append(results, *c)
	}
	return results, nil
}

func (r *stubCompanyRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	c, ok := r.companies[id]
	if !ok {
		return errNotFound
	}
	c.Activo = false
	return nil
}

var _ repository.CompanyRepository = (*stubCompanyRepo)(nil)

// ── AuditRepository ──────────────────────────────────────────────────────────

type stubAuditRepo struct {
	entries []model.AuditLog
}

func newStubAuditRepo() *stubAuditRepo { return &stubAuditRepo{} }

func (r *stubAuditRepo) Create(_ context.Context, e *model.AuditLog) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	r.entries = append(r.entries, *e)
	return nil
}

func (r *stubAuditRepo) CreateTx(_ *gorm.DB, e *model.AuditLog) error {
	return r.Create(context.Background(), e)
}

func (r *stubAuditRepo) ListByEntity(_ context.Context, entity string, entityID uuid.UUID) ([]model.AuditLog, error) {
	var results []model.AuditLog
	for _, e := range r.entries {
		if e.Entity == entity && e.EntityID == entityID {
			results = append(results, e)
		}
	}
	return results, nil
}

func (r *stubAuditRepo) List(_ context.Context, _, _ int) ([]model.AuditLog, int64, error) {
	return r.entries, int64(len(r.entries)), nil
}

var _ repository.AuditRepository = (*stubAuditRepo)(nil)

// ── BlobStorage ──────────────────────────────────────────────────────────────

type stubStorage struct {
	uploads []string
	fail    bool
}

func (s *stubStorage) Upload(_ context.Context, filename string, _ io.Reader, _ int64, _ string) (string, string, error) {
	if s.fail {
		return "", "", errors.New("storage unavailable")
	}
	s.uploads = append(s.uploads, filename)
	key := "proofs/" + filename
	return key, "https://storage.local/" + key, nil
}

var _ service.BlobStorage = (*stubStorage)(nil)

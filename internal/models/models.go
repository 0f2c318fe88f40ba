// Package models defines the domain entities persisted through the
// document store. Every entity carries the id of its owning user;
// queries are expected to filter on it.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Collection names as they appear in the persisted layout.
const (
	CollectionUsers      = "users"
	CollectionLenders    = "lenders"
	CollectionLoans      = "loans"
	CollectionPayments   = "payments"
	CollectionResetCodes = "resetcodes"
)

// DateLayout is the format for user-entered dates (loan origination,
// due dates, payment dates). ISO dates also sort correctly as strings.
const DateLayout = "2006-01-02"

type LenderType string

const (
	LenderTypeBank       LenderType = "Bank"
	LenderTypeIndividual LenderType = "Individual"
)

// User is an account identity. The credential secret is stored as a
// bcrypt hash, never in clear.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone,omitempty"`
	PasswordHash  string    `json:"passwordHash"`
	DisplayName   string    `json:"displayName,omitempty"`
	AvatarKey     string    `json:"avatarKey,omitempty"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Lender is a named loan source, either a bank or an individual.
type Lender struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Name      string     `json:"name"`
	Phone     string     `json:"phone,omitempty"`
	Address   string     `json:"address,omitempty"`
	Type      LenderType `json:"type"`
	ImageKey  string     `json:"imageKey,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Loan is one borrowing event against a lender. LenderName and Type are
// denormalized copies frozen at creation time. PaidAmount is a running
// total maintained by the payment mutation paths and must stay within
// [0, TotalAmount].
type Loan struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	LenderID    string          `json:"lenderId"`
	LenderName  string          `json:"lenderName"`
	Type        LenderType      `json:"type"`
	Date        string          `json:"date"`
	DueDate     string          `json:"dueDate,omitempty"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	PaidAmount  decimal.Decimal `json:"paidAmount"`
	Notes       string          `json:"notes,omitempty"`
	DocumentKey string          `json:"documentKey,omitempty"`
}

// Remaining returns the outstanding balance of the loan.
func (l *Loan) Remaining() decimal.Decimal {
	return l.TotalAmount.Sub(l.PaidAmount)
}

// Payment is a single repayment event against one loan. Upfront marks
// the companion payment recorded automatically at loan creation.
type Payment struct {
	ID         string          `json:"id"`
	UserID     string          `json:"userId"`
	LoanID     string          `json:"loanId"`
	LenderName string          `json:"lenderName,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Date       string          `json:"date"`
	Note       string          `json:"note,omitempty"`
	Upfront    bool            `json:"upfront,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// ResetCode is a pending password-recovery code. Only the hash of the
// code is stored; a code is valid until ExpiresAt and only once.
type ResetCode struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CodeHash  string    `json:"codeHash"`
	ExpiresAt time.Time `json:"expiresAt"`
	Used      bool      `json:"used"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session is the signed-in identity handed to consumers of the session
// boundary. UserID is the equality-filter value for every owned-entity
// query.
type Session struct {
	UserID        string `json:"userId"`
	Email         string `json:"email"`
	DisplayName   string `json:"displayName,omitempty"`
	AvatarKey     string `json:"avatarKey,omitempty"`
	EmailVerified bool   `json:"emailVerified"`
}

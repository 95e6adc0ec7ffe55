package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role distinguishes applicants from back-office staff.
type Role string

const (
	RoleApplicant Role = "applicant"
	RoleAdmin     Role = "admin"
)

// User is an applicant's identity, profile and financial snapshot. Loans,
// documents and applications reference the user by ID; the user does not
// own them. Notifications and the capped activity log are embedded because
// they are user-scoped side-effect records, not synchronized entities.
type User struct {
	ID               string          `json:"id"`
	FirstName        string          `json:"firstName"`
	LastName         string          `json:"lastName"`
	Email            string          `json:"email"`
	Phone            string          `json:"phone"`
	IDNumber         string          `json:"idNumber"`
	DateOfBirth      string          `json:"dateOfBirth"`
	Address          string          `json:"address"`
	MonthlyIncome    decimal.Decimal `json:"monthlyIncome"`
	MonthlyExpenses  decimal.Decimal `json:"monthlyExpenses"`
	BankName         string          `json:"bankName"`
	AccountNumber    string          `json:"accountNumber"`
	AccountType      string          `json:"accountType"`
	EmploymentStatus string          `json:"employmentStatus"`
	Employer         string          `json:"employer"`
	Role             Role            `json:"role"`
	Verified         bool            `json:"verified"`
	RegisteredAt     time.Time       `json:"registeredAt"`

	Notifications []Notification `json:"notifications"`
	Activities    []Activity     `json:"activities"`
}

// FullName joins the name parts for display copy.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// ProfileCompletion derives the completion percentage from the filled
// identity and financial fields. It is never stored; the snapshot fields
// are the authoritative input.
func (u *User) ProfileCompletion() int {
	fields := []bool{
		u.FirstName != "",
		u.LastName != "",
		u.Email != "",
		u.Phone != "",
		u.IDNumber != "",
		u.DateOfBirth != "",
		u.Address != "",
		u.MonthlyIncome.IsPositive(),
		u.BankName != "",
		u.AccountNumber != "",
		u.EmploymentStatus != "",
		u.Employer != "",
	}
	filled := 0
	for _, ok := range fields {
		if ok {
			filled++
		}
	}
	return filled * 100 / len(fields)
}

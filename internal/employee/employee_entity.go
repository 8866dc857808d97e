package employee

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	StatusActive     = "active"
	StatusInactive   = "inactive"
	StatusTerminated = "terminated"
)

const (
	PaymentMethodBankTransfer  = "bank_transfer"
	PaymentMethodCash          = "cash"
	PaymentMethodCheque        = "cheque"
	PaymentMethodDigitalWallet = "digital_wallet"
)

// Employee is read by payroll and never written by it.
type Employee struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CompanyID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	DepartmentID   *uuid.UUID      `gorm:"type:uuid"`
	PositionID     *uuid.UUID      `gorm:"type:uuid"`
	Department     *Department     `gorm:"foreignKey:DepartmentID;references:ID"`
	Position       *Position       `gorm:"foreignKey:PositionID;references:ID"`
	EmployeeNumber string          `gorm:"type:varchar(50);not null"`
	FullName       string          `gorm:"type:varchar(150);not null"`
	Email          string          `gorm:"type:varchar(150)"`
	Status         string          `gorm:"type:varchar(20);not null;default:active;index"`
	BaseSalary     decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	SalaryCurrency string          `gorm:"type:varchar(3);not null;default:USD"`
	SalaryType     string          `gorm:"type:varchar(20);not null;default:monthly"`

	Allowances  Allowances      `gorm:"embedded;embeddedPrefix:allowance_"`
	Bonuses     decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	Commissions decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	Deductions  Deductions      `gorm:"embedded;embeddedPrefix:deduction_"`

	BankName      *string `gorm:"type:varchar(100)"`
	BankAccount   *string `gorm:"type:varchar(50)"`
	WalletAccount *string `gorm:"type:varchar(100)"`
	PaymentMethod string  `gorm:"type:varchar(20);not null;default:bank_transfer"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// Allowances is the configured monthly allowance per category.
type Allowances struct {
	Transportation decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	Housing        decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	Meal           decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	Communication  decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	Special        decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
}

// Deductions is the configured per-period deduction per category.
type Deductions struct {
	LoanRepayment decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	AdvanceSalary decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	Uniform       decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	Parking       decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	Other         decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
}

type Department struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string    `gorm:"column:name"`
}

func (Department) TableName() string {
	return "departments"
}

type Position struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string    `gorm:"column:name"`
}

func (Position) TableName() string {
	return "positions"
}

func (e Employee) DepartmentName() string {
	if e.Department == nil {
		return ""
	}
	return e.Department.Name
}

func (e Employee) PositionName() string {
	if e.Position == nil {
		return ""
	}
	return e.Position.Name
}

func (e Employee) HasBankAccount() bool {
	return e.BankAccount != nil && *e.BankAccount != ""
}

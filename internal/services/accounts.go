package services

import (
	"context"
	"errors"
	"strings"

	"github.com/bengalurutaxi/btc-backend/internal/models"
	"github.com/bengalurutaxi/btc-backend/pkg/httperror"
	"github.com/bengalurutaxi/btc-backend/pkg/log"
	"github.com/bengalurutaxi/btc-backend/pkg/utils"
	"gorm.io/gorm"
)

// AccountService handles login for all three roles and the customer profile.
type AccountService struct {
	db     *gorm.DB
	tokens *utils.TokenIssuer
}

func NewAccountService(db *gorm.DB, tokens *utils.TokenIssuer) *AccountService {
	return &AccountService{db: db, tokens: tokens}
}

type LoginInput struct {
	Name     string      `json:"name" validate:"required"`
	Password string      `json:"password" validate:"required"`
	Role     models.Role `json:"role" validate:"required,oneof=customer driver admin"`
}

type LoginResult struct {
	Token string      `json:"token"`
	ID    uint        `json:"id"`
	Name  string      `json:"name"`
	Role  models.Role `json:"role"`
}

// account is the part of each role table login needs.
type account struct {
	id       uint
	name     string
	active   bool
	password *models.Credentials
}

var errInvalidCredentials = httperror.NewUnauthorized("Invalid credentials.")

// Login checks the name and password against the table of the requested role.
// An unknown name and a wrong password fail the same way; an inactive driver
// with the right password gets its own error.
func (s *AccountService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Role = models.Role(strings.ToLower(string(input.Role)))
	if err := validateInput(input); err != nil {
		return nil, err
	}

	acc, err := s.findAccount(ctx, input.Role, input.Name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, internal("AccountService.Login", err)
	}
	if err := acc.password.CheckPassword(input.Password); err != nil {
		log.GetLogger().Warn("AccountService.Login", "password mismatch", string(input.Role), input.Name)
		return nil, errInvalidCredentials
	}
	if !acc.active {
		return nil, httperror.NewForbidden("Driver account is inactive. Please contact your admin.")
	}

	token, err := s.tokens.GenerateToken(acc.id, string(input.Role))
	if err != nil {
		return nil, internal("AccountService.Login", err)
	}
	return &LoginResult{Token: token, ID: acc.id, Name: acc.name, Role: input.Role}, nil
}

func (s *AccountService) findAccount(ctx context.Context, role models.Role, name string) (*account, error) {
	db := s.db.WithContext(ctx)
	switch role {
	case models.RoleCustomer:
		var c models.Customer
		if err := db.First(&c, "name = ?", name).Error; err != nil {
			return nil, err
		}
		return &account{id: c.ID, name: c.Name, active: true, password: &c.Credentials}, nil
	case models.RoleDriver:
		var d models.Driver
		if err := db.First(&d, "name = ?", name).Error; err != nil {
			return nil, err
		}
		return &account{id: d.ID, name: d.Name, active: d.IsActive, password: &d.Credentials}, nil
	default:
		var a models.Admin
		if err := db.First(&a, "name = ?", name).Error; err != nil {
			return nil, err
		}
		return &account{id: a.ID, name: a.Name, active: true, password: &a.Credentials}, nil
	}
}

type RegisterCustomerInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber" validate:"required,phone10"`
	Password    string `json:"password" validate:"required,min=6"`
}

func (s *AccountService) RegisterCustomer(ctx context.Context, input RegisterCustomerInput) (*models.Customer, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.PhoneNumber = strings.TrimSpace(input.PhoneNumber)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	customer := models.Customer{Name: input.Name, Email: input.Email, PhoneNumber: input.PhoneNumber}
	if err := customer.SetPassword(input.Password); err != nil {
		return nil, internal("AccountService.RegisterCustomer", err)
	}

	err := runTx(ctx, s.db, "AccountService.RegisterCustomer", func(tx *gorm.DB) error {
		if err := checkCustomerUnique(tx, 0, customer.Name, customer.Email, customer.PhoneNumber); err != nil {
			return err
		}
		if err := tx.Create(&customer).Error; err != nil {
			return duplicateAsConflict(err, "A customer with these details already exists.")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (s *AccountService) GetCustomer(ctx context.Context, customerID uint) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.WithContext(ctx).First(&customer, "customer_id = ?", customerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, httperror.NewNotFound("Customer not found.")
	}
	if err != nil {
		return nil, internal("AccountService.GetCustomer", err)
	}
	return &customer, nil
}

// UpdateCustomerInput carries the profile fields a customer may change. Nil
// fields are left as they are.
type UpdateCustomerInput struct {
	Email       *string `json:"email" validate:"omitempty,email"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,phone10"`
	Password    *string `json:"password" validate:"omitempty,min=6"`
}

func (s *AccountService) UpdateCustomer(ctx context.Context, customerID uint, input UpdateCustomerInput) (*models.Customer, error) {
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		input.Email = &email
	}
	if input.PhoneNumber != nil {
		phone := strings.TrimSpace(*input.PhoneNumber)
		input.PhoneNumber = &phone
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if input.Email == nil && input.PhoneNumber == nil && input.Password == nil {
		return nil, httperror.NewBadRequest("Nothing to update.")
	}

	var customer models.Customer
	err := runTx(ctx, s.db, "AccountService.UpdateCustomer", func(tx *gorm.DB) error {
		if err := tx.First(&customer, "customer_id = ?", customerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return httperror.NewNotFound("Customer not found.")
			}
			return err
		}

		updates := map[string]interface{}{}
		if input.Email != nil {
			customer.Email = *input.Email
			updates["email"] = customer.Email
		}
		if input.PhoneNumber != nil {
			customer.PhoneNumber = *input.PhoneNumber
			updates["phone_number"] = customer.PhoneNumber
		}
		if input.Password != nil {
			if err := customer.SetPassword(*input.Password); err != nil {
				return err
			}
			updates["password_hash"] = customer.PasswordHash
		}
		if err := checkCustomerUnique(tx, customerID, "", customer.Email, customer.PhoneNumber); err != nil {
			return err
		}
		if err := tx.Model(&models.Customer{}).Where("customer_id = ?", customerID).Updates(updates).Error; err != nil {
			return duplicateAsConflict(err, "A customer with these details already exists.")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (s *AccountService) GetAdmin(ctx context.Context, adminID uint) (*models.Admin, error) {
	var admin models.Admin
	err := s.db.WithContext(ctx).First(&admin, "admin_id = ?", adminID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, httperror.NewNotFound("Admin not found.")
	}
	if err != nil {
		return nil, internal("AccountService.GetAdmin", err)
	}
	return &admin, nil
}

// checkCustomerUnique skips the name check when name is empty.
func checkCustomerUnique(tx *gorm.DB, selfID uint, name, email, phone string) error {
	fields := []struct {
		column, value, message string
	}{
		{"name", name, "Name already exists."},
		{"email", email, "Email already exists."},
		{"phone_number", phone, "Phone number already exists."},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		var n int64
		if err := tx.Model(&models.Customer{}).
			Where(f.column+" = ? AND customer_id <> ?", f.value, selfID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return httperror.NewConflict("%s", f.message)
		}
	}
	return nil
}

package models

import (
	"golang.org/x/crypto/bcrypt"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleDriver   Role = "driver"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleDriver || r == RoleAdmin
}

// Credentials is embedded by every account table.
type Credentials struct {
	PasswordHash string `gorm:"column:password_hash;not null" json:"-"`
}

func (c *Credentials) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	c.PasswordHash = string(hashedPassword)
	return nil
}

func (c *Credentials) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password))
}

type Customer struct {
	ID          uint   `gorm:"column:customer_id;primaryKey;autoIncrement" json:"customerId"`
	Name        string `gorm:"column:name;size:100;not null;uniqueIndex" json:"name"`
	Email       string `gorm:"column:email;size:255;not null;uniqueIndex" json:"email"`
	PhoneNumber string `gorm:"column:phone_number;size:10;not null;uniqueIndex" json:"phoneNumber"`
	Credentials `gorm:"embedded"`
}

func (Customer) TableName() string {
	return "customers"
}

type Admin struct {
	ID          uint   `gorm:"column:admin_id;primaryKey;autoIncrement" json:"adminId"`
	Name        string `gorm:"column:name;size:100;not null;uniqueIndex" json:"name"`
	Email       string `gorm:"column:email;size:255;not null" json:"email"`
	PhoneNumber string `gorm:"column:phone_number;size:10" json:"phoneNumber"`
	Credentials `gorm:"embedded"`
}

func (Admin) TableName() string {
	return "admins"
}

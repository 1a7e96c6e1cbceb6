package model

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Credential is the login identity of an employee. It lives outside AppData.
type Credential struct {
	Email        string    `gorm:"type:varchar(255);primaryKey" json:"email" validate:"required,email"`
	Password     string    `gorm:"type:varchar(255);not null" json:"-"` // Hidden from JSON
	EmployeeID   string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"employeeId"`
	TokenVersion string    `gorm:"type:varchar(64);default:''" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// SetPassword hashes and sets the password
func (c *Credential) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	c.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies the provided password against the stored hash
func (c *Credential) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(c.Password), []byte(password)) == nil
}

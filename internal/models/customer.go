package models

import (
	"errors"
	"strings"
)

type Customer struct {
	ID        string   `json:"id"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Email     string   `json:"email"`
	Address   *Address `json:"address,omitempty"`
}

type Address struct {
	Street      string `json:"street"`
	HouseNumber string `json:"house_number"`
	ZipCode     string `json:"zip_code"`
}

// CustomerRequest registers a customer. The id is assigned by the customer service.
type CustomerRequest struct {
	FirstName string   `json:"first_name" binding:"required"`
	LastName  string   `json:"last_name" binding:"required"`
	Email     string   `json:"email" binding:"required,email"`
	Address   *Address `json:"address,omitempty"`
}

func (r CustomerRequest) Validate() error {
	if strings.TrimSpace(r.FirstName) == "" {
		return errors.New("customer firstname is required")
	}
	if strings.TrimSpace(r.LastName) == "" {
		return errors.New("customer lastname is required")
	}
	if !strings.Contains(r.Email, "@") {
		return errors.New("customer email is not a valid email address")
	}
	return nil
}

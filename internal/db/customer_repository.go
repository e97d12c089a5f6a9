package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/models"
)

type CustomerRepository struct {
	db *sql.DB
}

func NewCustomerRepository(database *PostgresDB) *CustomerRepository {
	return &CustomerRepository{db: database.Conn}
}

func (r *CustomerRepository) Create(ctx context.Context, req models.CustomerRequest) (*models.Customer, error) {
	customer := &models.Customer{
		ID:        uuid.NewString(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Address:   req.Address,
	}

	var street, houseNumber, zipCode sql.NullString
	if a := req.Address; a != nil {
		street = sql.NullString{String: a.Street, Valid: true}
		houseNumber = sql.NullString{String: a.HouseNumber, Valid: true}
		zipCode = sql.NullString{String: a.ZipCode, Valid: true}
	}

	query := `
		INSERT INTO customers (id, first_name, last_name, email, street, house_number, zip_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query, customer.ID, customer.FirstName, customer.LastName, customer.Email,
		street, houseNumber, zipCode)
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	return customer, nil
}

// GetByID returns nil, nil when the customer does not exist.
func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	query := `
		SELECT id, first_name, last_name, email, street, house_number, zip_code
		FROM customers WHERE id = $1
	`

	var (
		c                            models.Customer
		street, houseNumber, zipCode sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &street, &houseNumber, &zipCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	if street.Valid || houseNumber.Valid || zipCode.Valid {
		c.Address = &models.Address{
			Street:      street.String,
			HouseNumber: houseNumber.String,
			ZipCode:     zipCode.String,
		}
	}

	return &c, nil
}

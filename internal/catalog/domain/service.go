package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type Service interface {
	Get(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, req ListRequest) ([]Product, error)
	Upsert(ctx context.Context, req UpsertRequest) (*Product, error)
	Seed(ctx context.Context) error
}

type ListRequest struct {
	Category string
	InStock  *bool
}

type UpsertRequest struct {
	ID       string
	Name     string
	Category string
	Price    decimal.Decimal
	Weight   string
	Region   string
	InStock  *bool
}

var (
	ErrInvalidID    = errors.New("invalid_id")
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidPrice = errors.New("invalid_price")
	ErrNotFound     = errors.New("not_found")
)

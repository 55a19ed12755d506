package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/eyewearvn/storefront/internal/domain"
	"github.com/eyewearvn/storefront/pkg/errors"
)

// AddressAPI is the address book part of the shop API
type AddressAPI interface {
	ListAddresses(ctx context.Context) ([]domain.Address, error)
	GetAddress(ctx context.Context, id int64) (*domain.Address, error)
	CreateAddress(ctx context.Context, in domain.AddressInput) (*domain.Address, error)
	UpdateAddress(ctx context.Context, id int64, in domain.AddressInput) (*domain.Address, error)
	DeleteAddress(ctx context.Context, id int64) error
	SetDefaultAddress(ctx context.Context, id int64) (*domain.Address, error)
}

type addressService struct {
	api    AddressAPI
	logger *zap.Logger
}

func NewAddressService(api AddressAPI, logger *zap.Logger) *addressService {
	return &addressService{
		api:    api,
		logger: logger,
	}
}

// List returns the saved addresses with the default first
func (s *addressService) List(ctx context.Context) ([]domain.Address, error) {
	list, err := s.api.ListAddresses(ctx)
	if err != nil {
		return nil, err
	}
	for i, a := range list {
		if a.IsDefault && i > 0 {
			out := append([]domain.Address{a}, list[:i]...)
			return append(out, list[i+1:]...), nil
		}
	}
	return list, nil
}

func (s *addressService) Get(ctx context.Context, id int64) (*domain.Address, error) {
	return s.api.GetAddress(ctx, id)
}

func (s *addressService) Create(ctx context.Context, in domain.AddressInput) (*domain.Address, error) {
	if fields := in.Validate(); fields != nil {
		return nil, &errors.ErrValidation{Fields: fields, Message: domain.MsgAddressIncomplete}
	}
	addr, err := s.api.CreateAddress(ctx, in.Normalized())
	if err != nil {
		return nil, err
	}
	s.logger.Info("Address saved", zap.Int64("address_id", addr.ID), zap.Bool("is_default", addr.IsDefault))
	return addr, nil
}

// Update replaces every field of the address
func (s *addressService) Update(ctx context.Context, id int64, in domain.AddressInput) (*domain.Address, error) {
	if fields := in.Validate(); fields != nil {
		return nil, &errors.ErrValidation{Fields: fields, Message: domain.MsgAddressIncomplete}
	}
	return s.api.UpdateAddress(ctx, id, in.Normalized())
}

func (s *addressService) Delete(ctx context.Context, id int64) error {
	return s.api.DeleteAddress(ctx, id)
}

func (s *addressService) SetDefault(ctx context.Context, id int64) (*domain.Address, error) {
	return s.api.SetDefaultAddress(ctx, id)
}

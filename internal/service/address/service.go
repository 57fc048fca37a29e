package address

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"shopcore/internal/domain"
)

type addressRepo interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Address, error)
	GetByID(ctx context.Context, userID, id string) (*domain.Address, error)
	Create(ctx context.Context, addr domain.Address) (*domain.Address, error)
	Update(ctx context.Context, addr domain.Address) (*domain.Address, error)
	Delete(ctx context.Context, userID, id string) error
	SetDefault(ctx context.Context, userID, id string) error
}

var (
	pinCodeRe = regexp.MustCompile(`^[0-9]{6}$`)
	phoneRe   = regexp.MustCompile(`^[0-9]{10}$`)
)

// Service validates address-book writes; single-default bookkeeping lives in
// the repository.
type Service struct {
	addresses addressRepo
}

func New(addresses addressRepo) *Service {
	return &Service{addresses: addresses}
}

func (s *Service) List(ctx context.Context, userID string) ([]domain.Address, error) {
	return s.addresses.ListByUser(ctx, userID)
}

func (s *Service) Get(ctx context.Context, userID, id string) (*domain.Address, error) {
	return s.addresses.GetByID(ctx, userID, id)
}

func (s *Service) Create(ctx context.Context, userID string, addr domain.Address) (*domain.Address, error) {
	addr.UserID = userID
	normalize(&addr)
	if err := validate(addr); err != nil {
		return nil, err
	}
	return s.addresses.Create(ctx, addr)
}

func (s *Service) Update(ctx context.Context, userID, id string, addr domain.Address) (*domain.Address, error) {
	addr.ID = id
	addr.UserID = userID
	normalize(&addr)
	if err := validate(addr); err != nil {
		return nil, err
	}
	return s.addresses.Update(ctx, addr)
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.addresses.Delete(ctx, userID, id)
}

func (s *Service) SetDefault(ctx context.Context, userID, id string) error {
	return s.addresses.SetDefault(ctx, userID, id)
}

func normalize(addr *domain.Address) {
	addr.FirstName = strings.TrimSpace(addr.FirstName)
	addr.LastName = strings.TrimSpace(addr.LastName)
	addr.AddressLine = strings.TrimSpace(addr.AddressLine)
	addr.City = strings.TrimSpace(addr.City)
	addr.State = strings.TrimSpace(addr.State)
	addr.PinCode = strings.TrimSpace(addr.PinCode)
	addr.PhoneNumber = strings.TrimSpace(addr.PhoneNumber)
	addr.Country = strings.TrimSpace(addr.Country)
	if addr.AddressType == "" {
		addr.AddressType = domain.AddressTypeHome
	}
}

func validate(addr domain.Address) error {
	switch {
	case addr.FirstName == "":
		return fmt.Errorf("%w: firstName is required", domain.ErrValidation)
	case addr.LastName == "":
		return fmt.Errorf("%w: lastName is required", domain.ErrValidation)
	case addr.AddressLine == "":
		return fmt.Errorf("%w: addressLine is required", domain.ErrValidation)
	case addr.City == "":
		return fmt.Errorf("%w: city is required", domain.ErrValidation)
	case addr.State == "":
		return fmt.Errorf("%w: state is required", domain.ErrValidation)
	case addr.Country == "":
		return fmt.Errorf("%w: country is required", domain.ErrValidation)
	case !pinCodeRe.MatchString(addr.PinCode):
		return fmt.Errorf("%w: pinCode must be exactly 6 digits", domain.ErrValidation)
	case !phoneRe.MatchString(addr.PhoneNumber):
		return fmt.Errorf("%w: phoneNumber must be exactly 10 digits", domain.ErrValidation)
	case !domain.ValidAddressType(addr.AddressType):
		return fmt.Errorf("%w: addressType must be home, work, or other", domain.ErrValidation)
	}
	return nil
}

package services

import (
	"context"
	"regexp"
	"strings"

	"ThriftStoreAPI/external/marketplace"
	"ThriftStoreAPI/internal/middleware"
	"ThriftStoreAPI/internal/model"
)

const sessionHours = 24 * 7

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// AddressFetcher returns the buyer's saved delivery address, if any.
type AddressFetcher interface {
	SavedAddress(ctx context.Context, email string) (*marketplace.SavedAddress, error)
}

// SessionService mints buyer sessions. There is no local account store: the
// marketplace backend owns profiles, so a session is just a signed claim of
// who the buyer says they are plus their contact details for checkout.
type SessionService struct {
	Addresses AddressFetcher
}

func NewSessionService(addresses AddressFetcher) *SessionService {
	return &SessionService{Addresses: addresses}
}

func (s *SessionService) Open(buyer model.Buyer) (string, error) {
	switch {
	case !emailRegex.MatchString(buyer.Email):
		return "", &model.ValidationError{Field: "email", Reason: "invalid email format"}
	case strings.TrimSpace(buyer.Name) == "":
		return "", &model.ValidationError{Field: "name", Reason: "required"}
	}
	return middleware.GenerateToken(buyer.Email, buyer.Name, buyer.Phone, sessionHours)
}

// Prefill fetches the saved delivery address so the checkout form starts
// filled in. A missing or unreachable profile is not an error; the buyer
// just types the address themselves.
func (s *SessionService) Prefill(ctx context.Context, email string) *marketplace.SavedAddress {
	if s.Addresses == nil {
		return nil
	}
	addr, err := s.Addresses.SavedAddress(ctx, email)
	if err != nil {
		return nil
	}
	return addr
}

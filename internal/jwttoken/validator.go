package jwttoken

import "certiva/internal/platform/middleware"

// Validator adapts the token service to the transport middleware contract.
type Validator struct {
	service *Service
}

func NewValidator(service *Service) *Validator {
	return &Validator{service: service}
}

func (v *Validator) Validate(tokenString string) (*middleware.TokenClaims, error) {
	claims, err := v.service.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.TokenClaims{
		UserID:        claims.UserID,
		Role:          claims.Role,
		Email:         claims.Email,
		InstitutionID: claims.InstitutionID,
	}, nil
}

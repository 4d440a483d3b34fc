package user

import "github.com/shopspring/decimal"

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	User        *User  `json:"user"`
}

type UpdateCommissionRateRequest struct {
	CommissionRate decimal.Decimal `json:"commissionRate"`
}

type UpdateActiveRequest struct {
	IsActive bool `json:"isActive"`
}

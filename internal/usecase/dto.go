package usecase

import (
	"time"

	"github.com/reverio/leadgen/internal/entity"
)

type RegisterUserInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthenticateUserInput struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	RequireAdmin bool   `json:"-"`
}

type UserOutput struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	Credits   int         `json:"credits"`
	Role      entity.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

func newUserOutput(u *entity.User) *UserOutput {
	return &UserOutput{
		ID:        u.ID,
		Email:     u.Email,
		Credits:   u.Credits,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

type AddCreditsInput struct {
	UserID  string `json:"user_id"`
	Credits int    `json:"credits"`
}

type AddCreditsOutput struct {
	UserID  string `json:"user_id"`
	Added   int    `json:"added"`
	Credits int    `json:"credits"`
}

type AssignLeadsInput struct {
	UserID string `json:"-"`
	Count  int    `json:"count"`
}

type AssignLeadsOutput struct {
	Leads            []entity.Lead `json:"leads"`
	CreditsRemaining int           `json:"credits_remaining"`
	LockedUntil      time.Time     `json:"locked_until"`
}

func (o *AssignLeadsOutput) LeadIDs() []int64 {
	ids := make([]int64, 0, len(o.Leads))
	for _, l := range o.Leads {
		ids = append(ids, l.ID)
	}
	return ids
}

type UpdateLeadStatusInput struct {
	UserID string `json:"-"`
	LeadID int64  `json:"lead_id"`
	Status string `json:"status"`
}

type IngestReport struct {
	Received   int `json:"received"`
	Created    int `json:"created"`
	Duplicates int `json:"duplicates"`
	Rejected   int `json:"rejected"`
}

func (r *IngestReport) Add(o IngestReport) {
	r.Received += o.Received
	r.Created += o.Created
	r.Duplicates += o.Duplicates
	r.Rejected += o.Rejected
}

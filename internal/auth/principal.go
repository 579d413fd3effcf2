package auth

import (
	"context"
	"errors"

	"github.com/SAP-F-2025/crm-service/internal/models"
)

var (
	ErrUnauthenticated     = errors.New("authentication required")
	ErrImpersonationDenied = errors.New("only platform admins may act for another company")
	ErrNoCompany           = errors.New("principal is not bound to a company")
)

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID        string          `json:"user_id"`
	CompanyID     string          `json:"company_id"`
	Email         string          `json:"email"`
	Role          models.UserRole `json:"role"`
	PlatformAdmin bool            `json:"platform_admin"`

	// ImpersonatorID is set when a platform admin acts for CompanyID. It then
	// holds the admin's own user id and UserID is left unchanged.
	ImpersonatorID *string `json:"impersonator_id,omitempty"`
	HomeCompanyID  string  `json:"home_company_id,omitempty"`
}

func (p *Principal) Can(perm Permission) bool {
	return PermissionsFor(p.Role, p.PlatformAdmin)[perm]
}

func (p *Principal) AtLeast(min models.UserRole) bool {
	return p.PlatformAdmin || AtLeast(p.Role, min)
}

func (p *Principal) IsImpersonating() bool {
	return p.ImpersonatorID != nil
}

// Impersonate returns a copy of p acting for companyID. Only platform admins
// may switch company; switching to the home company is a no-op.
func (p *Principal) Impersonate(companyID string) (*Principal, error) {
	if companyID == "" || companyID == p.CompanyID {
		return p, nil
	}
	if !p.PlatformAdmin {
		return nil, ErrImpersonationDenied
	}

	acting := *p
	adminID := p.UserID
	acting.ImpersonatorID = &adminID
	acting.HomeCompanyID = p.CompanyID
	acting.CompanyID = companyID
	return &acting, nil
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}

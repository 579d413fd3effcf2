package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/SAP-F-2025/crm-service/internal/models"
	"github.com/SAP-F-2025/crm-service/internal/utils"
	"github.com/gin-gonic/gin"
)

const (
	ImpersonateHeader = "X-Impersonate-Company"
	principalCtxKey   = "principal"
)

// CompanyExists reports whether a company can be acted upon.
type CompanyExists func(ctx context.Context, companyID string) (bool, error)

type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// RequireAuth verifies the bearer token, applies impersonation requested
// through X-Impersonate-Company and stores the Principal on the request.
func RequireAuth(verifier Verifier, companyExists CompanyExists) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			abort(c, http.StatusUnauthorized, "Authentication required", "unauthenticated")
			return
		}

		principal, err := verifier.Verify(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			utils.GetLoggerFromContext(c).Warn("Rejected bearer token", "error", err)
			abort(c, http.StatusUnauthorized, "Invalid or expired token", "invalid_token")
			return
		}

		if target := strings.TrimSpace(c.GetHeader(ImpersonateHeader)); target != "" {
			principal, err = principal.Impersonate(target)
			if errors.Is(err, ErrImpersonationDenied) {
				abort(c, http.StatusForbidden, err.Error(), "impersonation_denied")
				return
			}
			if principal.IsImpersonating() && companyExists != nil {
				ok, err := companyExists(c.Request.Context(), target)
				if err != nil {
					utils.GetLoggerFromContext(c).Error("Failed to look up impersonated company", "error", err)
					abort(c, http.StatusInternalServerError, "Failed to resolve company", "internal_error")
					return
				}
				if !ok {
					abort(c, http.StatusNotFound, "Company not found", "company_not_found")
					return
				}
			}
		}

		if principal.CompanyID == "" {
			abort(c, http.StatusForbidden, ErrNoCompany.Error(), "no_company")
			return
		}

		c.Set(principalCtxKey, principal)
		c.Set("user_id", principal.UserID)
		c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), principal))

		fields := []any{"user_id", principal.UserID, "company_id", principal.CompanyID}
		if principal.IsImpersonating() {
			fields = append(fields, "impersonator_id", *principal.ImpersonatorID)
		}
		utils.AddLoggerFields(c, fields...)

		c.Next()
	}
}

// RequireRole rejects callers below min in the role hierarchy.
func RequireRole(min models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "Authentication required", "unauthenticated")
			return
		}
		if !p.AtLeast(min) {
			abort(c, http.StatusForbidden, "Requires role "+string(min)+" or above", "insufficient_role")
			return
		}
		c.Next()
	}
}

// RequirePermission rejects callers whose role does not grant perm.
func RequirePermission(perm Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "Authentication required", "unauthenticated")
			return
		}
		if !p.Can(perm) {
			abort(c, http.StatusForbidden, "Missing permission "+string(perm), "insufficient_permissions")
			return
		}
		c.Next()
	}
}

// PrincipalFrom returns the caller stored by RequireAuth.
func PrincipalFrom(c *gin.Context) (*Principal, bool) {
	v, exists := c.Get(principalCtxKey)
	if !exists {
		return nil, false
	}
	p, ok := v.(*Principal)
	return p, ok
}

func abort(c *gin.Context, status int, message, code string) {
	c.AbortWithStatusJSON(status, errorBody{Message: message, Code: code})
}

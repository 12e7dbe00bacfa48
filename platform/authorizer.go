package platform

import (
	"context"
	"fmt"
	"strings"

	"cashier/config"
	"cashier/models"
)

// TrustedAuthorizer authorizes callers whose identity was already
// established by the transport in front of this service. An actor is
// authorized as exactly itself; roles come from static configuration.
type TrustedAuthorizer struct {
	roles map[string]map[models.Principal]bool
}

// NewTrustedAuthorizer creates an authorizer with the signup role
// populated from configuration.
func NewTrustedAuthorizer(cfg *config.Config) *TrustedAuthorizer {
	signup := make(map[models.Principal]bool)
	for _, account := range strings.Split(cfg.SignupAccounts, ",") {
		account = strings.TrimSpace(account)
		if account != "" {
			signup[models.Principal(account)] = true
		}
	}
	return &TrustedAuthorizer{
		roles: map[string]map[models.Principal]bool{
			models.RoleSignup: signup,
		},
	}
}

// Authorize fails unless the actor is the required principal
func (a *TrustedAuthorizer) Authorize(ctx context.Context, actor, required models.Principal) error {
	if actor != required {
		return fmt.Errorf("missing authority of %s: %w", required, models.ErrUnauthorized)
	}
	return nil
}

// AuthorizeRole fails unless the actor carries the named role
func (a *TrustedAuthorizer) AuthorizeRole(ctx context.Context, actor models.Principal, role string) error {
	if !a.roles[role][actor] {
		return fmt.Errorf("account %s does not carry role %s: %w", actor, role, models.ErrUnauthorized)
	}
	return nil
}

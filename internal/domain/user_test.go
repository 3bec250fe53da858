package domain_test

import (
	"testing"

	"github.com/galdos/auctionhouse/internal/domain"
	"github.com/google/uuid"
)

// The admin check everywhere in the services reads Role.IsAdmin through a
// *User — settlement permission and back-office access both hinge on it.
func TestUserRole_IsAdmin(t *testing.T) {
	admin := &domain.User{ID: uuid.New(), Role: domain.RoleAdmin}
	regular := &domain.User{ID: uuid.New(), Role: domain.RoleUser}

	if !admin.Role.IsAdmin() {
		t.Error("admin role should report IsAdmin")
	}
	if regular.Role.IsAdmin() {
		t.Error("user role should not report IsAdmin")
	}
	if domain.UserRole("").IsAdmin() {
		t.Error("empty role should not report IsAdmin")
	}
}

// Permission rule for manual settlement: the seller may settle their own
// auction; anyone else needs the admin role.
func TestSettlePermission(t *testing.T) {
	sellerID := uuid.New()
	seller := &domain.User{ID: sellerID, Role: domain.RoleUser}
	stranger := &domain.User{ID: uuid.New(), Role: domain.RoleUser}
	admin := &domain.User{ID: uuid.New(), Role: domain.RoleAdmin}

	allowed := func(u *domain.User) bool {
		return u.ID == sellerID || u.Role.IsAdmin()
	}

	if !allowed(seller) {
		t.Error("seller should be allowed to settle their own auction")
	}
	if !allowed(admin) {
		t.Error("admin should be allowed to settle any auction")
	}
	if allowed(stranger) {
		t.Error("a third party should not be allowed to settle")
	}
}

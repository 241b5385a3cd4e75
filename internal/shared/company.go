package shared

import (
	"fmt"
	"slices"
)

// Companies served by the desk.
const (
	CompanyCGCEL  = "CGCEL"
	CompanyCGPISL = "CGPISL"
	// CompanyAll selects every company.
	CompanyAll = "ALL"
)

// Companies lists the tenant companies in display order.
func Companies() []string {
	return []string{CompanyCGCEL, CompanyCGPISL}
}

// ValidCompany reports whether s names a single company.
func ValidCompany(s string) bool {
	return slices.Contains(Companies(), s)
}

// ValidCompanySelector reports whether s is a company or ALL.
func ValidCompanySelector(s string) bool {
	return s == CompanyAll || ValidCompany(s)
}

// ScopeCompany resolves the company a request acts on. Admins may pick any
// selector through requested and default to their session company. Other
// roles are pinned to their session company.
func ScopeCompany(sess *Session, requested string) (string, error) {
	if sess == nil {
		return "", ErrSessionMissing
	}
	if sess.Role() == RoleAdmin {
		if requested == "" {
			return sess.Company(), nil
		}
		return requested, nil
	}
	if requested != "" && requested != sess.Company() {
		return "", fmt.Errorf("%w: %q", ErrForeignCompany, requested)
	}
	return sess.Company(), nil
}

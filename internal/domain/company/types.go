package company

// Package company contains domain-level types for connected QuickBooks
// companies (tenants) and the per-session registry of them.

import (
	"errors"
	"time"
)

// Company represents one connected QuickBooks organization the user can act
// in. IsConnected flips to false on disconnect; the record persists upstream
// for later reconnection.
type Company struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	RealmID     string    `json:"realm_id"`
	IsConnected bool      `json:"is_connected"`
	IsDefault   bool      `json:"is_default"`
	Role        string    `json:"role"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// ErrNotInRegistry is returned when an operation names a company that is not
// present in the registry snapshot.
var ErrNotInRegistry = errors.New("company not in registry")

// Registry is the snapshot of companies available to a session plus the
// active-company pointer. At most one entry has IsActive set, and it must be
// the one ActiveID points at.
type Registry struct {
	Companies []Company `json:"companies"`
	ActiveID  string    `json:"active_id"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Active returns the active company, or nil when none is selected.
func (r *Registry) Active() *Company {
	if r == nil || r.ActiveID == "" {
		return nil
	}
	for i := range r.Companies {
		if r.Companies[i].ID == r.ActiveID {
			return &r.Companies[i]
		}
	}
	return nil
}

// SetActive moves the active pointer to id and rewrites the IsActive flag
// across the whole list so exactly one entry is true. It does not touch the
// pointer when id is not present.
func (r *Registry) SetActive(id string) error {
	found := false
	for i := range r.Companies {
		if r.Companies[i].ID == id {
			found = true
			break
		}
	}
	if !found {
		return ErrNotInRegistry
	}
	r.ActiveID = id
	for i := range r.Companies {
		r.Companies[i].IsActive = r.Companies[i].ID == id
	}
	return nil
}

// Resolve picks the active company from a freshly fetched list: an entry
// flagged IsActive wins, otherwise the server-provided activeCompanyID is
// matched. The flags are rewritten to agree with the resolved pointer.
func Resolve(companies []Company, activeCompanyID string) Registry {
	reg := Registry{Companies: companies, FetchedAt: time.Now()}

	for i := range companies {
		if companies[i].IsActive {
			reg.ActiveID = companies[i].ID
			break
		}
	}
	if reg.ActiveID == "" && activeCompanyID != "" {
		for i := range companies {
			if companies[i].ID == activeCompanyID {
				reg.ActiveID = activeCompanyID
				break
			}
		}
	}

	for i := range reg.Companies {
		reg.Companies[i].IsActive = reg.ActiveID != "" && reg.Companies[i].ID == reg.ActiveID
	}
	return reg
}

// Package authz holds explicit capability checks called at each operation boundary.
package authz

import "github.com/google/uuid"

// Role names as stored on users and carried in tokens
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Capability is a named action an actor may perform
type Capability string

const (
	CapViewOwnAccount Capability = "loyalty.account.view_own"
	CapViewAnyAccount Capability = "loyalty.account.view_any"
	CapEarnPoints     Capability = "loyalty.points.earn"
	CapRedeemPoints   Capability = "loyalty.points.redeem"
	CapAdjustPoints   Capability = "loyalty.points.adjust"
	CapViewAnyLedger  Capability = "loyalty.transactions.view_any"
)

// RoleCapabilities maps roles to what they may do
var RoleCapabilities = map[string][]Capability{
	RoleUser: {
		CapViewOwnAccount, CapRedeemPoints,
	},
	RoleAdmin: {
		CapViewOwnAccount, CapRedeemPoints,
		CapViewAnyAccount, CapViewAnyLedger, CapEarnPoints, CapAdjustPoints,
	},
}

// Actor is the authenticated caller
type Actor struct {
	ID   uuid.UUID
	Role string
}

// IsZero reports whether no caller is attached
func (a Actor) IsZero() bool {
	return a.ID == uuid.Nil
}

// Has reports whether the actor's role grants cap
func (a Actor) Has(cap Capability) bool {
	if a.IsZero() {
		return false
	}
	for _, c := range RoleCapabilities[a.Role] {
		if c == cap {
			return true
		}
	}
	return false
}

// CanViewAccount: owner, or anyone who may view every account
func CanViewAccount(actor Actor, ownerID uuid.UUID) bool {
	if actor.IsZero() {
		return false
	}
	if actor.ID == ownerID {
		return actor.Has(CapViewOwnAccount)
	}
	return actor.Has(CapViewAnyAccount)
}

// CanViewTransactions: owner, or anyone who may read every ledger
func CanViewTransactions(actor Actor, ownerID uuid.UUID) bool {
	if actor.IsZero() {
		return false
	}
	if actor.ID == ownerID {
		return actor.Has(CapViewOwnAccount)
	}
	return actor.Has(CapViewAnyLedger)
}

// CanEarnPoints allows recording completed bookings. Guests never credit themselves.
func CanEarnPoints(actor Actor) bool {
	return actor.Has(CapEarnPoints)
}

// CanRedeemPoints allows spending points of the actor's own account only
func CanRedeemPoints(actor Actor, ownerID uuid.UUID) bool {
	return actor.ID == ownerID && actor.Has(CapRedeemPoints)
}

// CanAdjustPoints allows administrative balance corrections
func CanAdjustPoints(actor Actor) bool {
	return actor.Has(CapAdjustPoints)
}

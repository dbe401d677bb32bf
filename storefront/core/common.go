package core

import (
	"time"
)

// OccurredAt represents when a command was issued.
type OccurredAt = time.Time

// ToOccurredAt converts a time to OccurredAt with UTC normalization and microsecond precision.
func ToOccurredAt(t time.Time) OccurredAt {
	return t.UTC().Truncate(time.Microsecond)
}

// Status is the wire value of an order status.
type Status string

const (
	StatusPending   Status = "en_attente"
	StatusConfirmed Status = "confirmee"
	StatusShipped   Status = "expediee"
	StatusDelivered Status = "livree"
	StatusCancelled Status = "annulee"
)

// AllStatuses lists the five statuses in lifecycle order.
func AllStatuses() []Status {
	return []Status{StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled}
}

// ParseStatus returns false for anything but the five wire values.
func ParseStatus(raw string) (Status, bool) {
	for _, s := range AllStatuses() {
		if string(s) == raw {
			return s, true
		}
	}

	return "", false
}

// IsTerminal reports whether the status ends the normal lifecycle.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

func (s Status) String() string {
	return string(s)
}

// Method is the delivery channel: home delivery or pickup at one of two partner office networks.
type Method string

const (
	MethodHome    Method = "domicile"
	MethodOfficeA Method = "bureau_a"
	MethodOfficeB Method = "bureau_b"
)

// ParseMethod returns false for unknown delivery methods.
func ParseMethod(raw string) (Method, bool) {
	switch m := Method(raw); m {
	case MethodHome, MethodOfficeA, MethodOfficeB:
		return m, true
	default:
		return "", false
	}
}

// IsOffice reports whether the method is a pickup at a partner office.
func (m Method) IsOffice() bool {
	return m == MethodOfficeA || m == MethodOfficeB
}

// Speed is the delivery tier.
type Speed string

const (
	SpeedExpress Speed = "express"
	SpeedEconomy Speed = "economique"
)

// ParseSpeed returns false for unknown delivery speeds.
func ParseSpeed(raw string) (Speed, bool) {
	switch s := Speed(raw); s {
	case SpeedExpress, SpeedEconomy:
		return s, true
	default:
		return "", false
	}
}

// Role is the role claim of an authenticated requester.
type Role string

const (
	RoleCustomer Role = "client"
	RoleAdmin    Role = "admin"
)

// Actor identifies who issues a command. The zero Actor is an anonymous guest.
type Actor struct {
	ID   string
	Role Role
}

// GuestActor returns the anonymous actor.
func GuestActor() Actor {
	return Actor{}
}

// CustomerActor returns an authenticated customer.
func CustomerActor(customerID string) Actor {
	return Actor{ID: customerID, Role: RoleCustomer}
}

// AdminActor returns an authenticated administrator.
func AdminActor(adminID string) Actor {
	return Actor{ID: adminID, Role: RoleAdmin}
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a Actor) IsGuest() bool {
	return a.ID == ""
}

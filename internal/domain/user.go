package domain

import "time"

type Permission string

const (
	PermAddProduct      Permission = "add_product"
	PermViewOrder       Permission = "view_order"
	PermAddOrder        Permission = "add_order"
	PermChangeOrder     Permission = "change_order"
	PermDeleteOrder     Permission = "delete_order"
	PermCourier         Permission = "is_courier"
	PermAddOrderProduct Permission = "add_orderproduct"
)

type User struct {
	ID           int64        `db:"id" json:"id"`
	Username     string       `db:"username" json:"username"`
	PasswordHash string       `db:"password_hash" json:"-"`
	Email        string       `db:"email" json:"email"`
	Permissions  []Permission `db:"permissions" json:"permissions"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
}

// Actor is whoever issues a request. The zero value is an anonymous visitor.
type Actor struct {
	UserID      int64
	permissions map[Permission]struct{}
}

func Anonymous() Actor {
	return Actor{}
}

func NewActor(user *User) Actor {
	perms := make(map[Permission]struct{}, len(user.Permissions))
	for _, p := range user.Permissions {
		perms[p] = struct{}{}
	}

	return Actor{UserID: user.ID, permissions: perms}
}

func (a Actor) IsAuthenticated() bool {
	return a.UserID != 0
}

func (a Actor) Has(p Permission) bool {
	_, ok := a.permissions[p]
	return ok
}

// OwnerID is the value stored as an order's owner: nil for anonymous actors.
func (a Actor) OwnerID() *int64 {
	if !a.IsAuthenticated() {
		return nil
	}
	id := a.UserID
	return &id
}

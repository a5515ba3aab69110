// Package access implements the role table gating mutating operations:
// one owner, a set of admins, and an optional allowance for registered
// proxies to create events. Role changes take effect on the next call.
package access

import "errors"

var (
	ErrNotOwner     = errors.New("access: caller is not the owner")
	ErrNotAdmin     = errors.New("access: caller is not an admin")
	ErrEmptyAccount = errors.New("access: empty account")
)

// Controller holds the role table. It is written only under the
// engine's lock, so it carries no locking of its own.
type Controller struct {
	owner  string
	admins map[string]bool

	// allowProxyCreation lets registered proxies create events in
	// addition to admins.
	allowProxyCreation bool
}

// New returns a Controller with the given owner. The owner is always an
// admin.
func New(owner string, allowProxyCreation bool) *Controller {
	return &Controller{
		owner:              owner,
		admins:             make(map[string]bool),
		allowProxyCreation: allowProxyCreation,
	}
}

func (c *Controller) Owner() string { return c.owner }

func (c *Controller) IsOwner(caller string) bool {
	return caller != "" && caller == c.owner
}

func (c *Controller) IsAdmin(caller string) bool {
	return c.IsOwner(caller) || c.admins[caller]
}

// AllowProxyCreation reports whether registered proxies may create
// events.
func (c *Controller) AllowProxyCreation() bool { return c.allowProxyCreation }

// SetOwner reassigns ownership. Only the current owner may call it.
func (c *Controller) SetOwner(caller, newOwner string) error {
	if !c.IsOwner(caller) {
		return ErrNotOwner
	}
	if newOwner == "" {
		return ErrEmptyAccount
	}
	c.owner = newOwner
	return nil
}

// GrantAdmin adds an admin. Only the owner may call it.
func (c *Controller) GrantAdmin(caller, account string) error {
	if !c.IsOwner(caller) {
		return ErrNotOwner
	}
	if account == "" {
		return ErrEmptyAccount
	}
	c.admins[account] = true
	return nil
}

// RevokeAdmin removes an admin. Only the owner may call it. Revoking
// the owner is a no-op since ownership implies admin.
func (c *Controller) RevokeAdmin(caller, account string) error {
	if !c.IsOwner(caller) {
		return ErrNotOwner
	}
	delete(c.admins, account)
	return nil
}

// SetAllowProxyCreation toggles proxy event creation. Owner only.
func (c *Controller) SetAllowProxyCreation(caller string, allow bool) error {
	if !c.IsOwner(caller) {
		return ErrNotOwner
	}
	c.allowProxyCreation = allow
	return nil
}

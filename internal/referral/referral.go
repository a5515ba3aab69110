// Package referral defines the referral-binding directory consumed by
// the engine: each participant is bound to at most one proxy, and each
// proxy carries a payout address and a fee-share rate.
package referral

import (
	"errors"

	"github.com/kplaydefi/k-game/internal/model"
)

var (
	ErrUnknownProxy = errors.New("referral: unknown proxy")
	ErrBoundToOther = errors.New("referral: participant bound to another proxy")
)

// Directory is the referral-binding collaborator. The engine queries it
// at stake time and at settlement; implementations outside this package
// may be backed by an external registry.
type Directory interface {
	// BindOrVerify binds participant to proxy if unbound, or reports
	// whether the existing binding matches. A false return means the
	// participant is bound to a different proxy.
	BindOrVerify(participant, proxyID string) (bool, error)

	// IsRegisteredProxy reports whether the account is a registered
	// proxy.
	IsRegisteredProxy(account string) bool

	// ProxyByID returns a proxy's details by its identifier.
	ProxyByID(proxyID string) (model.Proxy, error)

	// ProxyByAddress returns a proxy's details by its payout address.
	ProxyByAddress(address string) (model.Proxy, error)

	// BoundProxy returns the proxy a participant is bound to, or
	// false if unbound.
	BoundProxy(participant string) (model.Proxy, bool)
}

// MemoryDirectory is an in-process Directory.
type MemoryDirectory struct {
	proxies  map[string]model.Proxy // by id
	byAddr   map[string]string      // address -> id
	bindings map[string]string      // participant -> proxy id
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		proxies:  make(map[string]model.Proxy),
		byAddr:   make(map[string]string),
		bindings: make(map[string]string),
	}
}

// Register adds or updates a proxy.
func (d *MemoryDirectory) Register(p model.Proxy) {
	if old, ok := d.proxies[p.ID]; ok {
		delete(d.byAddr, old.Address)
	}
	d.proxies[p.ID] = p
	d.byAddr[p.Address] = p.ID
}

func (d *MemoryDirectory) BindOrVerify(participant, proxyID string) (bool, error) {
	if _, ok := d.proxies[proxyID]; !ok {
		return false, ErrUnknownProxy
	}
	bound, ok := d.bindings[participant]
	if !ok {
		d.bindings[participant] = proxyID
		return true, nil
	}
	return bound == proxyID, nil
}

func (d *MemoryDirectory) IsRegisteredProxy(account string) bool {
	if _, ok := d.proxies[account]; ok {
		return true
	}
	_, ok := d.byAddr[account]
	return ok
}

func (d *MemoryDirectory) ProxyByID(proxyID string) (model.Proxy, error) {
	p, ok := d.proxies[proxyID]
	if !ok {
		return model.Proxy{}, ErrUnknownProxy
	}
	return p, nil
}

func (d *MemoryDirectory) ProxyByAddress(address string) (model.Proxy, error) {
	id, ok := d.byAddr[address]
	if !ok {
		return model.Proxy{}, ErrUnknownProxy
	}
	return d.proxies[id], nil
}

func (d *MemoryDirectory) BoundProxy(participant string) (model.Proxy, bool) {
	id, ok := d.bindings[participant]
	if !ok {
		return model.Proxy{}, false
	}
	p, ok := d.proxies[id]
	return p, ok
}

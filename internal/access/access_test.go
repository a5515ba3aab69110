package access

import "testing"

func TestOwnerIsAdmin(t *testing.T) {
	c := New("owner", false)
	if !c.IsAdmin("owner") {
		t.Error("owner should be admin")
	}
	if c.IsAdmin("stranger") {
		t.Error("stranger should not be admin")
	}
}

func TestGrantRevokeAdmin(t *testing.T) {
	c := New("owner", false)
	if err := c.GrantAdmin("stranger", "ops"); err != ErrNotOwner {
		t.Errorf("expected ErrNotOwner, got %v", err)
	}
	if err := c.GrantAdmin("owner", "ops"); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if !c.IsAdmin("ops") {
		t.Error("ops should be admin after grant")
	}
	if err := c.RevokeAdmin("owner", "ops"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if c.IsAdmin("ops") {
		t.Error("ops should not be admin after revoke")
	}
}

func TestSetOwner_TakesEffectImmediately(t *testing.T) {
	c := New("old", false)
	if err := c.SetOwner("old", "new"); err != nil {
		t.Fatalf("set owner: %v", err)
	}
	if c.IsOwner("old") {
		t.Error("old owner retained ownership")
	}
	if !c.IsOwner("new") {
		t.Error("new owner not recognized")
	}
	if err := c.SetOwner("old", "other"); err != ErrNotOwner {
		t.Errorf("expected ErrNotOwner, got %v", err)
	}
}

func TestSetOwner_RejectsEmpty(t *testing.T) {
	c := New("owner", false)
	if err := c.SetOwner("owner", ""); err != ErrEmptyAccount {
		t.Errorf("expected ErrEmptyAccount, got %v", err)
	}
}

func TestAllowProxyCreation(t *testing.T) {
	c := New("owner", false)
	if c.AllowProxyCreation() {
		t.Error("proxy creation should start disabled")
	}
	if err := c.SetAllowProxyCreation("owner", true); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !c.AllowProxyCreation() {
		t.Error("proxy creation should be enabled")
	}
}

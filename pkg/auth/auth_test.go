package auth

import "testing"

func TestIsPrivileged(t *testing.T) {
	g := New("admin-role")
	if !g.IsPrivileged([]string{"member", "admin-role"}) {
		t.Error("actor with the admin role should be privileged")
	}
	if g.IsPrivileged([]string{"member", "student"}) {
		t.Error("actor without the admin role should not be privileged")
	}
	if g.IsPrivileged(nil) {
		t.Error("actor with no roles should not be privileged")
	}
}

func TestEmptyGuardRefusesEveryone(t *testing.T) {
	g := New("")
	if g.IsPrivileged([]string{""}) {
		t.Error("unresolved guard must refuse everyone")
	}
}

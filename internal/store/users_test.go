package store

import (
	"context"
	"path/filepath"
	"testing"

	"toolcrib/pkg/domain"
	"toolcrib/testutil"
)

func TestHashPassword(t *testing.T) {
	if got := HashPassword(""); got != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Fatalf("unexpected digest %s", got)
	}
	if HashPassword("a") == HashPassword("b") {
		t.Fatalf("distinct passwords must hash differently")
	}
}

func TestLoadUsersTrimsAndDropsBlankNames(t *testing.T) {
	s, dir, _ := newTestStore(t)
	writeData(t, dir, DefaultUsersFile, "Username,Password,Role\n Bediener , ,user\n,abc,admin\nchef,"+HashPassword("geheim")+",admin\n")

	users := s.LoadUsers(context.Background())
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %+v", users)
	}
	if users[0] != (domain.UserAccount{Username: "Bediener", Role: domain.RoleUser}) {
		t.Fatalf("unexpected first user %+v", users[0])
	}
	if users[1].Role != domain.RoleAdmin {
		t.Fatalf("unexpected role %q", users[1].Role)
	}
}

func TestAddAndDeleteUser(t *testing.T) {
	ctx := context.Background()
	s, dir, _ := newTestStore(t)

	added, err := s.AddUser(ctx, "lager1", "pw", domain.RoleLager)
	if err != nil || !added {
		t.Fatalf("add: %v %v", added, err)
	}
	added, err = s.AddUser(ctx, "lager1", "other", domain.RoleUser)
	if err != nil || added {
		t.Fatalf("duplicate add should return false: %v %v", added, err)
	}
	got := string(testutil.ReadFile(t, filepath.Join(dir, DefaultUsersFile)))
	want := "Username,Password,Role\r\nlager1," + HashPassword("pw") + ",lager\r\n"
	if got != want {
		t.Fatalf("unexpected users file %q", got)
	}

	if err := s.DeleteUser(ctx, "lager1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if users := New(s.Paths()).LoadUsers(ctx); len(users) != 0 {
		t.Fatalf("expected no users, got %+v", users)
	}
}

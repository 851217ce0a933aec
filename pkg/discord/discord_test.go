package discord

import (
	"fmt"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/DevForge-BG/discord-bot/migrations"
	"github.com/DevForge-BG/discord-bot/pkg/auth"
	"github.com/DevForge-BG/discord-bot/pkg/config"
	"github.com/DevForge-BG/discord-bot/pkg/shared"
	"github.com/DevForge-BG/discord-bot/pkg/store"
)

func TestSplitArgs(t *testing.T) {
	cases := []struct {
		input string
		want  []string
	}{
		{`assign <@!1> "Widget API" https://github.com/acme/widget M backend`,
			[]string{"assign", "<@!1>", "Widget API", "https://github.com/acme/widget", "M", "backend"}},
		{"done", []string{"done"}},
		{`feedback needs tests`, []string{"feedback", "needs", "tests"}},
		{`a "b c" d`, []string{"a", "b c", "d"}},
		{"  spaced   out  ", []string{"spaced", "out"}},
	}
	for _, c := range cases {
		got, err := splitArgs(c.input)
		if err != nil {
			t.Errorf("splitArgs(%q) failed: %v", c.input, err)
			continue
		}
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("splitArgs(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestSplitArgsUnbalancedQuotes(t *testing.T) {
	if _, err := splitArgs(`assign "Widget API`); err == nil {
		t.Error("unbalanced quotes should fail")
	}
}

func TestParseMention(t *testing.T) {
	for _, arg := range []string{"<@123>", "<@!123>"} {
		id, err := parseMention(arg)
		if err != nil || id != "123" {
			t.Errorf("parseMention(%q) = %q, %v", arg, id, err)
		}
	}
	for _, arg := range []string{"123", "<@>", "@user"} {
		if _, err := parseMention(arg); err == nil {
			t.Errorf("parseMention(%q) should fail", arg)
		}
	}
}

type fakeRoles struct {
	roles   []*discordgo.Role
	created int
}

func (f *fakeRoles) listRoles() ([]*discordgo.Role, error) {
	return append([]*discordgo.Role(nil), f.roles...), nil
}

func (f *fakeRoles) createRole(name string, color int, permissions int) (string, error) {
	f.created++
	id := fmt.Sprintf("role-%d", f.created)
	f.roles = append(f.roles, &discordgo.Role{ID: id, Name: name, Color: color, Permissions: permissions})
	return id, nil
}

func TestEnsureCoreRolesIdempotent(t *testing.T) {
	community := config.DefaultCommunity()
	dir := &fakeRoles{}

	first, err := ensureCoreRoles(dir, community)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	wantCount := 5 + len(community.FocusRoles)
	if dir.created != wantCount {
		t.Errorf("first run created %d roles, want %d", dir.created, wantCount)
	}

	second, err := ensureCoreRoles(dir, community)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if dir.created != wantCount {
		t.Errorf("second run created %d more roles", dir.created-wantCount)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("role ids changed between runs:\nfirst  %+v\nsecond %+v", first, second)
	}

	for _, role := range dir.roles {
		if role.Name == community.AdminRole && role.Permissions != discordgo.PermissionAdministrator {
			t.Errorf("admin role permissions = %d", role.Permissions)
		}
	}
}

func newTestBot(t *testing.T) *Bot {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "devforge.db"))
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Migrate(db); err != nil {
		t.Fatalf("migrating database: %v", err)
	}
	return NewBot(nil, "guild-1", config.DefaultCommunity(), RoleSet{},
		auth.New("admin-role"), store.New(db), nil, nil)
}

func message(authorID string, roles ...string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ChannelID: "chan-1",
		Author:    &discordgo.User{ID: authorID},
		Member:    &discordgo.Member{Roles: roles},
	}}
}

func TestExecuteRefusesAdminCommandWithoutRole(t *testing.T) {
	b := newTestBot(t)

	_, err := b.execute(message("student-1", "student-role"), []string{"adopt", "<@!55>"})
	if err == nil {
		t.Fatal("non-admin adopt should be refused")
	}
	cmdErr, ok := err.(shared.CommandError)
	if !ok || cmdErr.ErrorType != shared.AuthorizationError {
		t.Errorf("err = %#v, want an authorization refusal", err)
	}

	// The refusal must happen before the handler runs: no row is written.
	p, err := b.store.FindParticipant("55")
	if err != nil {
		t.Fatalf("FindParticipant failed: %v", err)
	}
	if p != nil {
		t.Errorf("refused adopt still touched the store: %+v", p)
	}
}

func TestExecuteAllowsAdminCommandWithRole(t *testing.T) {
	b := newTestBot(t)

	// The gate passes; the handler itself then rejects the missing argument.
	_, err := b.execute(message("admin-1", "admin-role"), []string{"adopt"})
	cmdErr, ok := err.(shared.CommandError)
	if !ok || cmdErr.ErrorType != shared.ArgumentError {
		t.Errorf("err = %#v, want an argument error from the handler", err)
	}
}

func TestExecuteUnrecognizedCommand(t *testing.T) {
	b := newTestBot(t)
	_, err := b.execute(message("student-1"), []string{"dance"})
	cmdErr, ok := err.(shared.CommandError)
	if !ok || cmdErr.ErrorType != shared.ArgumentError {
		t.Errorf("err = %#v, want an argument error", err)
	}
}

func TestIsGreetingOnly(t *testing.T) {
	for _, content := range []string{"hi", "  Hey ", "ZDRASTI"} {
		if !IsGreetingOnly(content) {
			t.Errorf("IsGreetingOnly(%q) = false", content)
		}
	}
	for _, content := range []string{"hi, my build fails with X", "how do I test this?"} {
		if IsGreetingOnly(content) {
			t.Errorf("IsGreetingOnly(%q) = true", content)
		}
	}
}

func TestIsMonitoredChannel(t *testing.T) {
	b := &Bot{community: config.DefaultCommunity()}
	for _, name := range []string{"help", "questions", "proj-widget"} {
		if !b.isMonitoredChannel(name) {
			t.Errorf("%q should be monitored", name)
		}
	}
	if b.isMonitoredChannel("general") {
		t.Error("general should not be monitored")
	}
}

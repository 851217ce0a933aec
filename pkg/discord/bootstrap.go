package discord

import (
	"math/rand"
	"time"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
	"github.com/teacat/noire"

	"github.com/DevForge-BG/discord-bot/pkg/config"
)

// RoleSet holds the ids of the core roles, resolved once at startup.
type RoleSet struct {
	AdminID    string
	StudentID  string
	PendingID  string
	InactiveID string
	MentorID   string
	FocusIDs   map[string]string
}

var colorGenerator = rand.New(rand.NewSource(time.Now().UnixNano()))

func randomColor() noire.Color {
	return noire.NewRGB(
		float64(colorGenerator.Intn(256)),
		float64(colorGenerator.Intn(256)),
		float64(colorGenerator.Intn(256)))
}

func roleColor(c noire.Color) int {
	colorInt := int(c.Red)
	colorInt = (colorInt << 8) + int(c.Green)
	colorInt = (colorInt << 8) + int(c.Blue)
	return colorInt
}

// roleDirectory is the guild's role surface, split out from the session so
// bootstrap idempotency can be exercised without one.
type roleDirectory interface {
	listRoles() ([]*discordgo.Role, error)
	createRole(name string, color int, permissions int) (string, error)
}

type sessionRoles struct {
	session *discordgo.Session
	guildID string
}

func (s sessionRoles) listRoles() ([]*discordgo.Role, error) {
	return s.session.GuildRoles(s.guildID)
}

func (s sessionRoles) createRole(name string, color int, permissions int) (string, error) {
	role, err := s.session.GuildRoleCreate(s.guildID)
	if err != nil {
		return "", err
	}
	if _, err = s.session.GuildRoleEdit(s.guildID, role.ID, name, color, false, permissions, true); err != nil {
		return "", err
	}
	return role.ID, nil
}

// EnsureCoreRoles creates any community roles missing from the guild and
// returns the full id set. Safe to run on every startup.
func EnsureCoreRoles(s *discordgo.Session, guildID string, community config.Community) (RoleSet, error) {
	return ensureCoreRoles(sessionRoles{session: s, guildID: guildID}, community)
}

func ensureCoreRoles(dir roleDirectory, community config.Community) (RoleSet, error) {
	existing, err := dir.listRoles()
	if err != nil {
		return RoleSet{}, err
	}
	byName := make(map[string]string, len(existing))
	for _, role := range existing {
		byName[role.Name] = role.ID
	}

	ensure := func(name string, color int, permissions int) (string, error) {
		if id, ok := byName[name]; ok {
			return id, nil
		}
		id, err := dir.createRole(name, color, permissions)
		if err != nil {
			return "", err
		}
		byName[name] = id
		log.WithField("role", name).Info("created core role")
		return id, nil
	}

	set := RoleSet{FocusIDs: make(map[string]string, len(community.FocusRoles))}
	if set.AdminID, err = ensure(community.AdminRole, roleColor(randomColor()), discordgo.PermissionAdministrator); err != nil {
		return RoleSet{}, err
	}
	if set.StudentID, err = ensure(community.StudentRole, roleColor(randomColor()), 0); err != nil {
		return RoleSet{}, err
	}
	if set.PendingID, err = ensure(community.PendingRole, roleColor(randomColor().Darken(.3)), 0); err != nil {
		return RoleSet{}, err
	}
	if set.InactiveID, err = ensure(community.InactiveRole, roleColor(randomColor().Darken(.5)), 0); err != nil {
		return RoleSet{}, err
	}
	if set.MentorID, err = ensure(community.MentorRole, roleColor(randomColor()), 0); err != nil {
		return RoleSet{}, err
	}
	for _, name := range community.FocusRoles {
		id, err := ensure(name, roleColor(randomColor().Lighten(.25)), 0)
		if err != nil {
			return RoleSet{}, err
		}
		set.FocusIDs[name] = id
	}
	return set, nil
}

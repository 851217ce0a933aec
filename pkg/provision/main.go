package provision

import (
	"strings"

	"github.com/DevForge-BG/discord-bot/pkg/shared"
)

// Grant is a channel permission overwrite expressed platform-neutrally:
// either the subject may view/write the channel, or viewing is denied.
type Grant struct {
	SubjectID string
	IsRole    bool
	Deny      bool
}

// Directory is the platform surface the manager provisions through.
// Lookups return "" when nothing matches.
type Directory interface {
	CategoryByName(name string) (string, error)
	CreateCategory(name string, grants []Grant) (string, error)
	RefreshCategoryGrants(categoryID string, grants []Grant) error
	ChannelByName(categoryID, name string) (string, error)
	CreateChannel(categoryID, name string, grants []Grant) (string, error)
}

type Space struct {
	CategoryID       string
	ProfileChannelID string
	Created          bool
}

type Channel struct {
	ID      string
	Created bool
}

// Manager idempotently provisions participant spaces and project channels.
type Manager struct {
	dir          Directory
	everyoneRole string
}

func NewManager(dir Directory, everyoneRole string) *Manager {
	return &Manager{dir: dir, everyoneRole: everyoneRole}
}

// SpaceName derives the category name for a participant.
func SpaceName(participantName string) string {
	return strings.ToLower("student-" + participantName)
}

// ChannelName derives the project channel name from a title: the first
// whitespace-delimited token, lower-cased. Titles sharing a first token
// share a channel.
func ChannelName(title string) string {
	short := title
	if fields := strings.Fields(title); len(fields) > 0 {
		short = fields[0]
	}
	return strings.ReplaceAll(strings.ToLower("proj-"+short), " ", "-")
}

func (m *Manager) grants(p shared.ParticipantHandle, invokerID string) []Grant {
	gs := []Grant{
		{SubjectID: m.everyoneRole, IsRole: true, Deny: true},
		{SubjectID: p.ID},
	}
	if invokerID != "" && invokerID != p.ID {
		gs = append(gs, Grant{SubjectID: invokerID})
	}
	return gs
}

// EnsureParticipantSpace creates the participant's category and its profile
// channel, or reuses them, refreshing access grants either way. Default
// visibility is denied; the participant and the invoking admin can see in.
func (m *Manager) EnsureParticipantSpace(p shared.ParticipantHandle, invokerID string) (Space, error) {
	name := SpaceName(p.Name)
	grants := m.grants(p, invokerID)

	categoryID, err := m.dir.CategoryByName(name)
	if err != nil {
		return Space{}, err
	}
	created := false
	if categoryID == "" {
		if categoryID, err = m.dir.CreateCategory(name, grants); err != nil {
			return Space{}, err
		}
		created = true
	} else if err = m.dir.RefreshCategoryGrants(categoryID, grants); err != nil {
		return Space{}, err
	}

	profileID, err := m.dir.ChannelByName(categoryID, "profile")
	if err != nil {
		return Space{}, err
	}
	if profileID == "" {
		if profileID, err = m.dir.CreateChannel(categoryID, "profile", grants); err != nil {
			return Space{}, err
		}
	}
	return Space{CategoryID: categoryID, ProfileChannelID: profileID, Created: created}, nil
}

// EnsureProjectChannel creates or reuses the project channel inside the
// participant's space. The space itself must already exist.
func (m *Manager) EnsureProjectChannel(p shared.ParticipantHandle, title string) (Channel, error) {
	categoryID, err := m.dir.CategoryByName(SpaceName(p.Name))
	if err != nil {
		return Channel{}, err
	}
	if categoryID == "" {
		return Channel{}, shared.NewError(shared.NotFoundError,
			"no space for %v yet, run !init first", p.Name)
	}

	name := ChannelName(title)
	channelID, err := m.dir.ChannelByName(categoryID, name)
	if err != nil {
		return Channel{}, err
	}
	if channelID != "" {
		return Channel{ID: channelID}, nil
	}
	channelID, err = m.dir.CreateChannel(categoryID, name, m.grants(p, ""))
	if err != nil {
		return Channel{}, err
	}
	return Channel{ID: channelID, Created: true}, nil
}

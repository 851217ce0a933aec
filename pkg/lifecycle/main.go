package lifecycle

import (
	"fmt"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/DevForge-BG/discord-bot/models"
	"github.com/DevForge-BG/discord-bot/pkg/auth"
	"github.com/DevForge-BG/discord-bot/pkg/provision"
	"github.com/DevForge-BG/discord-bot/pkg/shared"
)

var repoPattern = regexp.MustCompile(`github\.com/([^/\s]+/[^/\s]+)`)

// ParseRepoFullName extracts owner/name from a GitHub repository URL.
func ParseRepoFullName(repoURL string) (string, error) {
	m := repoPattern.FindStringSubmatch(repoURL)
	if m == nil {
		return "", shared.NewError(shared.ArgumentError, "invalid GitHub repository link: %v", repoURL)
	}
	return strings.TrimSuffix(m[1], ".git"), nil
}

// Store is the slice of the durable store the lifecycle needs.
type Store interface {
	RecordProject(ownerID, channelID, title, repoURL string) (uint, error)
	FindLatestProjectByChannel(channelID string) (*models.Project, error)
	SetProjectStatus(projectID uint, status models.ProjectStatus) error
	RegisterRepoMapping(repoFullName, channelID string) error
}

// Provisioner ensures the destination channel for an assignment exists.
type Provisioner interface {
	EnsureProjectChannel(p shared.ParticipantHandle, title string) (provision.Channel, error)
}

// HookRegistrar installs a push webhook on an assigned repository.
type HookRegistrar interface {
	EnsurePushHook(repoFullName string) error
}

// Service owns the project status model. Every transition is a store
// mutation followed by an outbound notice; guard refusals mutate nothing.
type Service struct {
	store     Store
	spaces    Provisioner
	messenger shared.Messenger
	guard     auth.Guard
	hooks     HookRegistrar // nil when no GitHub App is configured
}

func New(store Store, spaces Provisioner, messenger shared.Messenger, guard auth.Guard, hooks HookRegistrar) *Service {
	return &Service{store: store, spaces: spaces, messenger: messenger, guard: guard, hooks: hooks}
}

type Assignment struct {
	ProjectID    uint
	ChannelID    string
	RepoFullName string
}

// Assign creates a project for a participant: provisions the channel,
// records the row as in progress, registers the repository mapping and posts
// the assignment notice.
func (s *Service) Assign(actor shared.Actor, owner shared.ParticipantHandle, title, repoURL, difficulty, focus string) (Assignment, error) {
	if !s.guard.IsPrivileged(actor.Roles) {
		return Assignment{}, errNotPrivileged()
	}
	repoFullName, err := ParseRepoFullName(repoURL)
	if err != nil {
		return Assignment{}, err
	}
	channel, err := s.spaces.EnsureProjectChannel(owner, title)
	if err != nil {
		return Assignment{}, err
	}
	projectID, err := s.store.RecordProject(owner.ID, channel.ID, title, repoURL)
	if err != nil {
		return Assignment{}, shared.NewError(shared.ExecutionError, "could not record project: %v", err)
	}
	if err := s.store.RegisterRepoMapping(repoFullName, channel.ID); err != nil {
		return Assignment{}, shared.NewError(shared.ExecutionError, "could not register repository mapping: %v", err)
	}
	s.post(channel.ID, assignmentNotice(owner, title, repoURL, difficulty, focus))
	if s.hooks != nil {
		if err := s.hooks.EnsurePushHook(repoFullName); err != nil {
			log.WithError(err).WithField("repo", repoFullName).Warn("could not register push hook")
		}
	}
	return Assignment{ProjectID: projectID, ChannelID: channel.ID, RepoFullName: repoFullName}, nil
}

// MarkDone is issued by the participant from the project's channel and moves
// the project to awaiting review.
func (s *Service) MarkDone(channelID string) (*models.Project, error) {
	project, err := s.project(channelID)
	if err != nil {
		return nil, err
	}
	if project.Status != models.StatusInProgress {
		return nil, shared.NewError(shared.StateError,
			"project %q is %v, not in progress", project.Title, project.Status)
	}
	if err := s.transition(project, models.StatusAwaitingReview); err != nil {
		return nil, err
	}
	return project, nil
}

// Feedback returns a reviewed project to iteration and posts the review text.
func (s *Service) Feedback(actor shared.Actor, channelID, issues string) (*models.Project, error) {
	if !s.guard.IsPrivileged(actor.Roles) {
		return nil, errNotPrivileged()
	}
	project, err := s.project(channelID)
	if err != nil {
		return nil, err
	}
	if project.Status != models.StatusAwaitingReview {
		return nil, shared.NewError(shared.StateError,
			"project %q is %v, not awaiting review", project.Title, project.Status)
	}
	if err := s.transition(project, models.StatusInProgress); err != nil {
		return nil, err
	}
	s.post(channelID, fmt.Sprintf(
		"**Review from <@!%v>:**\n%v\n\nStatus: 🔁 Iteration in progress.", actor.ID, issues))
	return project, nil
}

// Approve marks a project production-ready. Allowed from any non-terminal
// status; a prior review request is not required.
func (s *Service) Approve(actor shared.Actor, channelID string) (*models.Project, error) {
	if !s.guard.IsPrivileged(actor.Roles) {
		return nil, errNotPrivileged()
	}
	project, err := s.project(channelID)
	if err != nil {
		return nil, err
	}
	if project.Status.Terminal() {
		return nil, shared.NewError(shared.StateError, "project %q is already approved", project.Title)
	}
	if err := s.transition(project, models.StatusApproved); err != nil {
		return nil, err
	}
	s.post(channelID, fmt.Sprintf(
		"✅ <@!%v>, the project **'%v'** is approved as production-ready.\n"+
			"Put it on your CV/LinkedIn with a clear conscience.",
		project.OwnerID, project.Title))
	return project, nil
}

func (s *Service) project(channelID string) (*models.Project, error) {
	project, err := s.store.FindLatestProjectByChannel(channelID)
	if err != nil {
		return nil, shared.NewError(shared.ExecutionError, "could not look up project: %v", err)
	}
	if project == nil {
		return nil, shared.NewError(shared.NotFoundError, "this is not a project channel")
	}
	return project, nil
}

func (s *Service) transition(project *models.Project, status models.ProjectStatus) error {
	if err := s.store.SetProjectStatus(project.ID, status); err != nil {
		return shared.NewError(shared.ExecutionError, "could not update project status: %v", err)
	}
	project.Status = status
	return nil
}

// Chat is best-effort: the store is authoritative, so a failed notice is
// logged rather than rolling back the transition.
func (s *Service) post(channelID, content string) {
	if err := s.messenger.Send(channelID, content); err != nil {
		log.WithError(err).WithField("channel", channelID).Warn("could not deliver lifecycle notice")
	}
}

func errNotPrivileged() error {
	return shared.NewError(shared.AuthorizationError, "You do not have permission to execute this command")
}

func assignmentNotice(owner shared.ParticipantHandle, title, repoURL, difficulty, focus string) string {
	return fmt.Sprintf("**Project: %v**\n"+
		"**Student:** <@!%v>\n"+
		"**Repo:** %v\n"+
		"**Difficulty:** %v\n"+
		"**Focus:** %v\n\n"+
		"Target: production quality. No lazy commit messages.\n\n"+
		"**Acceptance criteria**\n"+
		"- Starts with a single command\n"+
		"- A README that makes sense\n"+
		"- Sane structure\n"+
		"- No secrets in the code\n"+
		"- Basic tests, or the testing story written down",
		title, owner.ID, repoURL, difficulty, focus)
}

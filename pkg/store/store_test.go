package store_test

import (
	"path/filepath"
	"testing"

	"github.com/DevForge-BG/discord-bot/migrations"
	"github.com/DevForge-BG/discord-bot/models"
	"github.com/DevForge-BG/discord-bot/pkg/store"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "devforge.db"))
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Migrate(db); err != nil {
		t.Fatalf("migrating database: %v", err)
	}
	return store.New(db)
}

func TestUpsertParticipantPreservesActiveFlag(t *testing.T) {
	s := newStore(t)
	if err := s.ActivateParticipant("42"); err != nil {
		t.Fatalf("ActivateParticipant failed: %v", err)
	}
	if err := s.UpsertParticipant("42", "alice"); err != nil {
		t.Fatalf("UpsertParticipant failed: %v", err)
	}
	p, err := s.FindParticipant("42")
	if err != nil {
		t.Fatalf("FindParticipant failed: %v", err)
	}
	if p == nil {
		t.Fatal("expected participant row")
	}
	if p.GithubUsername != "alice" {
		t.Errorf("GithubUsername = %q, want %q", p.GithubUsername, "alice")
	}
	if !p.IsActive {
		t.Error("re-application cleared the active flag")
	}
}

func TestUpsertParticipantOverwritesHandle(t *testing.T) {
	s := newStore(t)
	if err := s.UpsertParticipant("7", "old-handle"); err != nil {
		t.Fatalf("UpsertParticipant failed: %v", err)
	}
	if err := s.UpsertParticipant("7", "new-handle"); err != nil {
		t.Fatalf("UpsertParticipant failed: %v", err)
	}
	p, err := s.FindParticipant("7")
	if err != nil || p == nil {
		t.Fatalf("FindParticipant: %v, %v", p, err)
	}
	if p.GithubUsername != "new-handle" {
		t.Errorf("GithubUsername = %q, want %q", p.GithubUsername, "new-handle")
	}
	if p.IsActive {
		t.Error("application alone should not activate a participant")
	}
}

func TestFindParticipantMissing(t *testing.T) {
	s := newStore(t)
	p, err := s.FindParticipant("nobody")
	if err != nil {
		t.Fatalf("FindParticipant failed: %v", err)
	}
	if p != nil {
		t.Errorf("expected nil for missing participant, got %+v", p)
	}
}

func TestRecordProjectStartsInProgress(t *testing.T) {
	s := newStore(t)
	id, err := s.RecordProject("owner", "chan-1", "Widget API", "https://github.com/acme/widget")
	if err != nil {
		t.Fatalf("RecordProject failed: %v", err)
	}
	if id == 0 {
		t.Fatal("expected a project id")
	}
	p, err := s.FindLatestProjectByChannel("chan-1")
	if err != nil || p == nil {
		t.Fatalf("FindLatestProjectByChannel: %v, %v", p, err)
	}
	if p.Status != models.StatusInProgress {
		t.Errorf("Status = %v, want %v", p.Status, models.StatusInProgress)
	}
	if p.Title != "Widget API" {
		t.Errorf("Title = %q", p.Title)
	}
}

func TestLatestProjectShadowsEarlierOne(t *testing.T) {
	s := newStore(t)
	first, err := s.RecordProject("owner", "chan-1", "First", "https://github.com/acme/first")
	if err != nil {
		t.Fatalf("RecordProject failed: %v", err)
	}
	second, err := s.RecordProject("owner", "chan-1", "Second", "https://github.com/acme/second")
	if err != nil {
		t.Fatalf("RecordProject failed: %v", err)
	}
	if second <= first {
		t.Fatalf("ids not sequential: %v then %v", first, second)
	}
	p, err := s.FindLatestProjectByChannel("chan-1")
	if err != nil || p == nil {
		t.Fatalf("FindLatestProjectByChannel: %v, %v", p, err)
	}
	if p.ID != second {
		t.Errorf("resolved project %v, want the later row %v", p.ID, second)
	}
}

func TestFindLatestProjectByChannelMissing(t *testing.T) {
	s := newStore(t)
	p, err := s.FindLatestProjectByChannel("nowhere")
	if err != nil {
		t.Fatalf("FindLatestProjectByChannel failed: %v", err)
	}
	if p != nil {
		t.Errorf("expected nil for channel without project, got %+v", p)
	}
}

func TestSetProjectStatus(t *testing.T) {
	s := newStore(t)
	id, err := s.RecordProject("owner", "chan-1", "Widget", "https://github.com/acme/widget")
	if err != nil {
		t.Fatalf("RecordProject failed: %v", err)
	}
	if err := s.SetProjectStatus(id, models.StatusAwaitingReview); err != nil {
		t.Fatalf("SetProjectStatus failed: %v", err)
	}
	p, err := s.FindLatestProjectByChannel("chan-1")
	if err != nil || p == nil {
		t.Fatalf("FindLatestProjectByChannel: %v, %v", p, err)
	}
	if p.Status != models.StatusAwaitingReview {
		t.Errorf("Status = %v, want %v", p.Status, models.StatusAwaitingReview)
	}
}

func TestSetProjectStatusMissingProject(t *testing.T) {
	s := newStore(t)
	if err := s.SetProjectStatus(9999, models.StatusApproved); err == nil {
		t.Error("updating a nonexistent project should fail")
	}
}

func TestRepoMappingFirstWriteWins(t *testing.T) {
	s := newStore(t)
	if err := s.RegisterRepoMapping("acme/widget", "chan-1"); err != nil {
		t.Fatalf("RegisterRepoMapping failed: %v", err)
	}
	if err := s.RegisterRepoMapping("acme/widget", "chan-2"); err != nil {
		t.Fatalf("second RegisterRepoMapping failed: %v", err)
	}
	channelID, err := s.LookupChannelForRepo("acme/widget")
	if err != nil {
		t.Fatalf("LookupChannelForRepo failed: %v", err)
	}
	if channelID != "chan-1" {
		t.Errorf("channel = %q, want the first registration %q", channelID, "chan-1")
	}
}

func TestLookupChannelForRepoUnmapped(t *testing.T) {
	s := newStore(t)
	channelID, err := s.LookupChannelForRepo("acme/unknown")
	if err != nil {
		t.Fatalf("LookupChannelForRepo failed: %v", err)
	}
	if channelID != "" {
		t.Errorf("expected no mapping, got %q", channelID)
	}
}

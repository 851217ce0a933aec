package config

import (
	"os"

	"github.com/caarlos0/env/v11"
	yaml "gopkg.in/yaml.v2"
)

// Config is the process environment: secrets, endpoints, file locations.
// It is built once at startup and passed explicitly to whatever needs it.
type Config struct {
	Token         string `env:"FORGE_TOKEN,required"`
	GuildID       string `env:"FORGE_GUILD_ID,required"`
	DBPath        string `env:"FORGE_DB_PATH" envDefault:"devforge.db"`
	ListenAddr    string `env:"FORGE_LISTEN_ADDR" envDefault:":8000"`
	PublicURL     string `env:"FORGE_PUBLIC_URL"`
	CommunityFile string `env:"FORGE_COMMUNITY_FILE" envDefault:"community.yaml"`

	// GitHub App credentials for push-hook auto-registration. All three must
	// be set for the feature to activate; FORGE_GITHUB_CREDS is the
	// base64-encoded private key PEM.
	GithubAppID          int64  `env:"FORGE_GITHUB_APP_ID"`
	GithubInstallationID int64  `env:"FORGE_GITHUB_INSTALLATION_ID"`
	GithubCreds          string `env:"FORGE_GITHUB_CREDS"`
}

func (c Config) GithubConfigured() bool {
	return c.GithubAppID != 0 && c.GithubInstallationID != 0 && c.GithubCreds != ""
}

// Community describes one server: role names to bootstrap and the channels
// the bot watches.
type Community struct {
	AdminRole           string   `yaml:"AdminRole"`
	StudentRole         string   `yaml:"StudentRole"`
	PendingRole         string   `yaml:"PendingRole"`
	InactiveRole        string   `yaml:"InactiveRole"`
	MentorRole          string   `yaml:"MentorRole"`
	FocusRoles          []string `yaml:"FocusRoles"`
	HelpChannels        []string `yaml:"HelpChannels"`
	ApplicationsChannel string   `yaml:"ApplicationsChannel"`
}

func Load() (Config, error) {
	var cfg Config
	err := env.Parse(&cfg)
	return cfg, err
}

// LoadCommunity reads the community file, falling back to the defaults when
// the file does not exist.
func LoadCommunity(path string) (Community, error) {
	c := DefaultCommunity()
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return Community{}, err
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return Community{}, err
	}
	return c, nil
}

func DefaultCommunity() Community {
	return Community{
		AdminRole:    "👑 Admin",
		StudentRole:  "🎓 Student",
		PendingRole:  "⏳ Pending",
		InactiveRole: "🚫 Inactive",
		MentorRole:   "👨‍🏫 Mentor",
		FocusRoles: []string{
			"🌐 Web",
			"⚙️ Backend",
			"🧠 Systems / Low-level",
			"📱 Mobile",
			"🖥️ Desktop",
		},
		HelpChannels:        []string{"help", "questions", "q-and-a"},
		ApplicationsChannel: "applications",
	}
}

// Package repo implements the gated mod repository service: Discord
// OAuth gated uploads into an object store, and a published manifest
// that Open Mod Manager download clients poll.
package repo

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"

	"ommrepo/internal/store"
)

//go:embed static
var staticFS embed.FS

const (
	discordAuthURL  = "https://discord.com/oauth2/authorize"
	discordTokenURL = "https://discord.com/api/oauth2/token"
	discordAPIBase  = "https://discord.com/api"
)

// Config holds the settings the Server needs. The Discord endpoint
// overrides exist for tests; left empty, the real Discord is used.
type Config struct {
	PublicURL string
	Title     string
	JWTSecret []byte

	DiscordClientID     string
	DiscordClientSecret string
	DiscordGuildID      string
	DiscordGuildRoleID  string

	DiscordAuthURL  string
	DiscordTokenURL string
	DiscordAPIBase  string

	// HTTPClient is used for Discord API calls.
	HTTPClient *http.Client
}

// Server handles the HTTP surface of the mod repository.
type Server struct {
	cfg        Config
	store      store.Store
	oauth      *oauth2.Config
	client     *http.Client
	apiBase    string
	publicHost string
	assets     fs.FS

	// partSize is the multipart chunk size for uploads.
	partSize int
}

// NewServer validates the configuration and wires up all dependencies.
// Construction failures are fatal at startup rather than on first use.
func NewServer(cfg Config, st store.Store) (*Server, error) {

	if st == nil {
		return nil, errors.New("store must not be nil")
	}

	if len(cfg.JWTSecret) == 0 {
		return nil, errors.New("JWTSecret must not be empty")
	}

	publicURL, err := url.Parse(cfg.PublicURL)
	if err != nil {
		return nil, fmt.Errorf("invalid public URL: %w", err)
	}

	if publicURL.Host == "" {
		return nil, fmt.Errorf("public URL %q has no host", cfg.PublicURL)
	}

	if cfg.DiscordAuthURL == "" {
		cfg.DiscordAuthURL = discordAuthURL
	}
	if cfg.DiscordTokenURL == "" {
		cfg.DiscordTokenURL = discordTokenURL
	}
	if cfg.DiscordAPIBase == "" {
		cfg.DiscordAPIBase = discordAPIBase
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	assets, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded frontend: %w", err)
	}

	oauth := &oauth2.Config{
		ClientID:     cfg.DiscordClientID,
		ClientSecret: cfg.DiscordClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  cfg.DiscordAuthURL,
			TokenURL: cfg.DiscordTokenURL,
		},
		RedirectURL: publicURL.JoinPath("auth/authorized").String(),
		Scopes:      []string{"identify", "guilds.members.read"},
	}

	return &Server{
		cfg:        cfg,
		store:      st,
		oauth:      oauth,
		client:     client,
		apiBase:    cfg.DiscordAPIBase,
		publicHost: publicURL.Hostname(),
		assets:     assets,
		partSize:   uploadChunkSize,
	}, nil
}

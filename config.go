package session

import (
	"os"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/ilyakaznacheev/cleanenv"
)

// EnvConfig implements Config from a yaml file and/or environment
// variables. Environment values overlay anything read from the file.
type EnvConfig struct {
	Endpoint             string        `yaml:"endpoint" env:"SESSION_AUTH_ENDPOINT" env-default:"http://localhost:4000/graphql"`
	LoginPath            string        `yaml:"login_path" env:"SESSION_LOGIN_PATH" env-default:"/login"`
	HTTPTimeout          time.Duration `yaml:"http_timeout" env:"SESSION_HTTP_TIMEOUT" env-default:"15s"`
	TokenKey             string        `yaml:"token_key" env:"SESSION_TOKEN_KEY" env-default:"accessToken"`
	TokenLookup          string        `yaml:"token_lookup" env:"SESSION_TOKEN_LOOKUP" env-default:"header:Authorization,cookie:accessToken"`
	AuthScheme           string        `yaml:"auth_scheme" env:"SESSION_AUTH_SCHEME" env-default:"Bearer"`
	CookieDuration       time.Duration `yaml:"cookie_duration" env:"SESSION_COOKIE_DURATION" env-default:"720h"`
	RejectedRouteKey     string        `yaml:"rejected_route_key" env:"SESSION_REJECTED_ROUTE_KEY" env-default:"rejected_route"`
	RejectedRouteDefault string        `yaml:"rejected_route_default" env:"SESSION_REJECTED_ROUTE_DEFAULT" env-default:"/"`
}

// LoadConfigFromEnv builds an EnvConfig from a yaml file when path is
// given, overlaid with environment variables, or from the environment
// alone when path is empty.
func LoadConfigFromEnv(path string) (*EnvConfig, error) {
	var cfg EnvConfig

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "config file is not readable").
				WithMetadata(map[string]any{"path": path})
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "could not parse config file").
				WithMetadata(map[string]any{"path": path})
		}
		return &cfg, nil
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "could not read config from environment")
	}

	return &cfg, nil
}

func (c *EnvConfig) GetEndpoint() string              { return c.Endpoint }
func (c *EnvConfig) GetLoginPath() string             { return c.LoginPath }
func (c *EnvConfig) GetHTTPTimeout() time.Duration    { return c.HTTPTimeout }
func (c *EnvConfig) GetTokenKey() string              { return c.TokenKey }
func (c *EnvConfig) GetTokenLookup() string           { return c.TokenLookup }
func (c *EnvConfig) GetAuthScheme() string            { return c.AuthScheme }
func (c *EnvConfig) GetCookieDuration() time.Duration { return c.CookieDuration }
func (c *EnvConfig) GetRejectedRouteKey() string      { return c.RejectedRouteKey }
func (c *EnvConfig) GetRejectedRouteDefault() string  { return c.RejectedRouteDefault }

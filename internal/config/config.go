package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   Server   `yaml:"server" json:"server"`
	Database Database `yaml:"database" json:"database"`
	Auth     Auth     `yaml:"auth" json:"auth"`
	Calendar Calendar `yaml:"calendar" json:"calendar"`
	Mail     Mail     `yaml:"mail" json:"mail"`
}

type Server struct {
	Addr string `yaml:"addr" json:"addr"`
	// Origin is the externally visible base URL, used to build magic links.
	Origin string `yaml:"origin" json:"origin"`
}

type Database struct {
	DSN string `yaml:"dsn" json:"dsn"`
}

type Auth struct {
	CookieName      string `yaml:"cookie_name" json:"cookie_name"`
	SessionTTLHours int    `yaml:"session_ttl_hours" json:"session_ttl_hours"`
	LoginTTLMinutes int    `yaml:"login_ttl_minutes" json:"login_ttl_minutes"`
	CookieSecure    string `yaml:"cookie_secure" json:"cookie_secure"`
	CookieSameSite  string `yaml:"cookie_samesite" json:"cookie_samesite"`
}

type Calendar struct {
	// Window around the reference date, in whole weeks.
	WeeksBefore int `yaml:"weeks_before" json:"weeks_before"`
	WeeksAfter  int `yaml:"weeks_after" json:"weeks_after"`
}

type Mail struct {
	// Mode selects the outgoing mail transport: "console" logs magic
	// links instead of sending them.
	Mode string `yaml:"mode" json:"mode"`
	From string `yaml:"from" json:"from"`
}

func Default() *Config {
	c := &Config{}
	c.ApplyDefaults()
	return c
}

func (c *Config) ApplyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8090"
	}
	if c.Server.Origin == "" {
		c.Server.Origin = "http://localhost:8090"
	}
	if c.Auth.CookieName == "" {
		c.Auth.CookieName = "planner_session"
	}
	if c.Auth.SessionTTLHours <= 0 {
		c.Auth.SessionTTLHours = 30 * 24
	}
	if c.Auth.LoginTTLMinutes <= 0 {
		c.Auth.LoginTTLMinutes = 30
	}
	if c.Auth.CookieSameSite == "" {
		c.Auth.CookieSameSite = "lax"
	}
	if c.Calendar.WeeksBefore <= 0 {
		c.Calendar.WeeksBefore = 4
	}
	if c.Calendar.WeeksAfter <= 0 {
		c.Calendar.WeeksAfter = 12
	}
	if c.Mail.Mode == "" {
		c.Mail.Mode = "console"
	}
	if c.Mail.From == "" {
		c.Mail.From = "planner@localhost"
	}
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Config
	if err := yaml.Unmarshal(b, &r); err != nil {
		return nil, err
	}
	r.ApplyDefaults()
	return &r, nil
}

// LoadOrDefault reads the config file when it exists and falls back to
// defaults when it does not, so a fresh checkout runs without setup.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

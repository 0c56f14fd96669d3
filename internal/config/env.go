package config

import (
	"os"
	"strconv"
)

// FromEnv applies environment variable overrides on top of cfg. Values
// that are unset or fail to parse leave the existing setting alone.
func FromEnv(cfg *Config) *Config {
	if cfg == nil {
		cfg = Default()
	}

	if v := os.Getenv("PLANNER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("PLANNER_ORIGIN"); v != "" {
		cfg.Server.Origin = v
	}
	if v := os.Getenv("PLANNER_DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("PLANNER_COOKIE_NAME"); v != "" {
		cfg.Auth.CookieName = v
	}
	if v := os.Getenv("PLANNER_COOKIE_SECURE"); v != "" {
		cfg.Auth.CookieSecure = v
	}
	if v := os.Getenv("PLANNER_COOKIE_SAMESITE"); v != "" {
		cfg.Auth.CookieSameSite = v
	}
	if v := getEnvInt("PLANNER_SESSION_TTL_HOURS"); v > 0 {
		cfg.Auth.SessionTTLHours = v
	}
	if v := getEnvInt("PLANNER_LOGIN_TTL_MINUTES"); v > 0 {
		cfg.Auth.LoginTTLMinutes = v
	}
	if v := getEnvInt("PLANNER_CALENDAR_WEEKS_BEFORE"); v > 0 {
		cfg.Calendar.WeeksBefore = v
	}
	if v := getEnvInt("PLANNER_CALENDAR_WEEKS_AFTER"); v > 0 {
		cfg.Calendar.WeeksAfter = v
	}
	if v := os.Getenv("PLANNER_MAIL_MODE"); v != "" {
		cfg.Mail.Mode = v
	}
	if v := os.Getenv("PLANNER_MAIL_FROM"); v != "" {
		cfg.Mail.From = v
	}

	return cfg
}

func getEnvInt(key string) int {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return num
}

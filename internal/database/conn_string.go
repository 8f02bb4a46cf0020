package database

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/rickgao/pricefeed/internal/config"
)

// BuildConnString returns cfg.URL when set, otherwise a postgres:// URL built
// from the individual fields.
func BuildConnString(cfg config.DBConfig) string {
	if cfg.URL != "" {
		return cfg.URL
	}

	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = config.DefaultDBSSLMode
	}
	port := cfg.Port
	if port == 0 {
		port = config.DefaultDBPort
	}

	u := url.URL{
		Scheme:   "postgres",
		Host:     cfg.Host + ":" + strconv.Itoa(port),
		Path:     "/" + cfg.Name,
		RawQuery: url.Values{"sslmode": {sslMode}}.Encode(),
	}
	// url.URL escapes userinfo, so passwords may contain @ : /
	if cfg.Password != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	} else if cfg.User != "" {
		u.User = url.User(cfg.User)
	}
	return u.String()
}

// Redact hides the password in a connection string for logging.
func Redact(connStr string) string {
	u, err := url.Parse(connStr)
	if err != nil {
		return fmt.Sprintf("<unparseable %d bytes>", len(connStr))
	}
	return u.Redacted()
}

package strava

import (
	"fmt"
	"strings"
)

// Credentials are the application values traded for an access token.
type Credentials struct {
	ClientID          int
	ClientSecret      string
	AuthorizationCode string
}

// Validate reports every missing value at once.
func (c Credentials) Validate() error {
	var missing []string
	if c.ClientID <= 0 {
		missing = append(missing, "client id")
	}
	if strings.TrimSpace(c.ClientSecret) == "" {
		missing = append(missing, "client secret")
	}
	if strings.TrimSpace(c.AuthorizationCode) == "" {
		missing = append(missing, "authorization code")
	}
	if len(missing) > 0 {
		return fmt.Errorf("strava credentials: missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// String keeps the secret and the code out of logs.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{ClientID: %d, ClientSecret: %s, AuthorizationCode: %s}",
		c.ClientID, redact(c.ClientSecret), redact(c.AuthorizationCode))
}

func redact(s string) string {
	if s == "" {
		return `""`
	}
	return "[redacted]"
}

package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Config holds CLI configuration
type Config struct {
	ServerURL   string
	Token       string
	TokenFile   string
	SessionID   string
	SessionFile string
	Output      string
	Verbose     bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:   getEnvOrDefault("SIGNUP_SERVER", "http://localhost:8080"),
		Token:       os.Getenv("SIGNUP_TOKEN"),
		TokenFile:   getEnvOrDefault("SIGNUP_TOKEN_FILE", defaultStatePath("token")),
		SessionFile: getEnvOrDefault("SIGNUP_SESSION_FILE", defaultStatePath("session")),
		Output:      "text",
		Verbose:     false,
	}
}

// LoadToken loads the token from file if not already set
func (c *Config) LoadToken() error {
	if c.Token != "" {
		return nil
	}
	token, err := readStateFile(c.TokenFile)
	if err != nil {
		return err
	}
	c.Token = token
	return nil
}

// SaveToken saves the token to the token file
func (c *Config) SaveToken(token string) error {
	c.Token = token
	return writeStateFile(c.TokenFile, token)
}

// ClearToken forgets the saved token
func (c *Config) ClearToken() error {
	c.Token = ""
	return removeStateFile(c.TokenFile)
}

// LoadSessionID loads the current signup session id from file
func (c *Config) LoadSessionID() error {
	id, err := readStateFile(c.SessionFile)
	if err != nil {
		return err
	}
	c.SessionID = id
	return nil
}

// SaveSessionID remembers the signup session for later gate commands
func (c *Config) SaveSessionID(id string) error {
	c.SessionID = id
	return writeStateFile(c.SessionFile, id)
}

// ClearSessionID forgets the signup session
func (c *Config) ClearSessionID() error {
	c.SessionID = ""
	return removeStateFile(c.SessionFile)
}

// ResolveSessionID picks the explicit id if given, otherwise the saved one
func (c *Config) ResolveSessionID(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if c.SessionID == "" {
		return "", errors.New("no signup session: run 'signup gate start' or pass --session")
	}
	return c.SessionID, nil
}

func readStateFile(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil // No state file is fine
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func writeStateFile(path, value string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(value), 0600)
}

func removeStateFile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func defaultStatePath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".signup", name)
	}
	return filepath.Join(home, ".signup", name)
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

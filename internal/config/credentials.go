package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// EnvSource looks secrets up in the process environment on every call.
type EnvSource struct{}

// Lookup returns the trimmed value of key, reporting false when unset or blank.
func (EnvSource) Lookup(key string) (string, bool) {
	return nonBlank(os.Getenv(key))
}

// StaticSource serves secrets from a fixed map.
type StaticSource map[string]string

func (s StaticSource) Lookup(key string) (string, bool) {
	if s == nil {
		return "", false
	}
	return nonBlank(s[key])
}

// DotEnvFileSource reads a dotenv formatted secrets file. The file is parsed
// on every lookup so rotated secrets are picked up without a restart; a
// missing or unreadable file behaves as an empty source.
type DotEnvFileSource struct {
	Path string
}

func (s DotEnvFileSource) Lookup(key string) (string, bool) {
	if strings.TrimSpace(s.Path) == "" {
		return "", false
	}
	values, err := godotenv.Read(s.Path)
	if err != nil {
		return "", false
	}
	return nonBlank(values[key])
}

// Source is the lookup capability shared by every source in this package.
type Source interface {
	Lookup(key string) (string, bool)
}

// ChainSource consults each source in order and returns the first hit.
type ChainSource []Source

func (c ChainSource) Lookup(key string) (string, bool) {
	for _, src := range c {
		if src == nil {
			continue
		}
		if v, ok := src.Lookup(key); ok {
			return v, true
		}
	}
	return "", false
}

// CredentialSource builds the lookup chain for provider secrets: the
// environment first, then CREDENTIALS_FILE when set.
func (c *Config) CredentialSource() Source {
	if strings.TrimSpace(c.CredentialsFile) == "" {
		return EnvSource{}
	}
	return ChainSource{EnvSource{}, DotEnvFileSource{Path: c.CredentialsFile}}
}

// LoadDotEnv preloads variables from the given dotenv files into the process
// environment without overriding values that are already set. Missing files
// are reported to the caller, which usually just logs them.
func LoadDotEnv(paths ...string) error {
	return godotenv.Load(paths...)
}

func nonBlank(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}
	return v, true
}

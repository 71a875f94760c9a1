package config

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	// ConfigFileName stores file of config
	ConfigFileName = "scanner.yaml"
)

const defaultIntervalMinutes = 30

// Handler contains handler configuration
type Handler struct {
	Slack        Slack        `json:"slack,omitempty" yaml:"slack,omitempty"`
	SlackWebhook SlackWebhook `json:"slackwebhook,omitempty" yaml:"slackwebhook,omitempty"`
	Webhook      Webhook      `json:"webhook" yaml:"webhook"`
	MSTeams      MSTeams      `json:"msteams,omitempty" yaml:"msteams,omitempty"`
	SMTP         SMTP         `json:"smtp,omitempty" yaml:"smtp,omitempty"`
}

// Categories contains the category toggles a scan watches. An all-false
// block means nothing was configured and every category is watched.
type Categories struct {
	Compute     bool `json:"compute" yaml:"compute"`
	Storage     bool `json:"storage" yaml:"storage"`
	Database    bool `json:"database" yaml:"database"`
	Network     bool `json:"network" yaml:"network"`
	Security    bool `json:"security" yaml:"security"`
	Monitoring  bool `json:"monitoring,omitempty" yaml:"monitoring,omitempty"`
	Integration bool `json:"integration,omitempty" yaml:"integration,omitempty"`
	Other       bool `json:"other,omitempty" yaml:"other,omitempty"`
}

// Watches reports whether events for a category should be emitted.
func (c Categories) Watches(category string) bool {
	if c == (Categories{}) {
		return true
	}

	switch strings.ToLower(category) {
	case "compute":
		return c.Compute
	case "storage":
		return c.Storage
	case "database":
		return c.Database
	case "network":
		return c.Network
	case "security":
		return c.Security
	case "monitoring":
		return c.Monitoring
	case "integration":
		return c.Integration
	case "other":
		return c.Other
	}

	return false
}

type Config struct {
	// Handlers know how to send notifications to specific services.
	Handler Handler `json:"handler"`

	// Categories to watch.
	Categories Categories `json:"categories"`

	// Minutes between rescans of each subscription.
	IntervalMinutes int `json:"intervalMinutes,omitempty" yaml:"intervalMinutes,omitempty"`

	// Enable/disable the entire scanner
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Subscriptions to skip (exclude from scanning)
	SkipSubscriptions []string `json:"skipSubscriptions,omitempty" yaml:"skipSubscriptions,omitempty"`

	// Subscriptions to include (if specified, only scan these)
	IncludeSubscriptions []string `json:"includeSubscriptions,omitempty" yaml:"includeSubscriptions,omitempty"`
}

// Interval returns the rescan period, defaulting when unset.
func (c *Config) Interval() time.Duration {
	if c.IntervalMinutes <= 0 {
		return defaultIntervalMinutes * time.Minute
	}

	return time.Duration(c.IntervalMinutes) * time.Minute
}

// ScansSubscription reports whether a subscription passes the include/skip
// lists. A non-empty include list wins over the skip list.
func (c *Config) ScansSubscription(id string) bool {
	if len(c.IncludeSubscriptions) > 0 {
		return containsFold(c.IncludeSubscriptions, id)
	}

	return !containsFold(c.SkipSubscriptions, id)
}

func containsFold(list []string, value string) bool {
	for _, item := range list {
		if strings.EqualFold(item, value) {
			return true
		}
	}

	return false
}

// Slack contains slack configuration
type Slack struct {
	// Slack "legacy" API token.
	Token string `json:"token"`
	// Slack channel.
	Channel string `json:"channel"`
	// Title of the message.
	Title string `json:"title"`
}

// SlackWebhook contains slack configuration
type SlackWebhook struct {
	// Slack channel.
	Channel string `json:"channel"`
	// Slack Username.
	Username string `json:"username"`
	// Slack Emoji.
	Emoji string `json:"emoji"`
	// Slack Webhook Url.
	Slackwebhookurl string `json:"slackwebhookurl"`
}

// Webhook contains webhook configuration
type Webhook struct {
	// Webhook URL.
	Url     string `json:"url"`
	Cert    string `json:"cert"`
	TlsSkip bool   `json:"tlsskip"`
}

// MSTeams contains MSTeams configuration
type MSTeams struct {
	// MSTeams API Webhook URL.
	WebhookURL string `json:"webhookurl"`
}

// SMTP contains SMTP configuration.
type SMTP struct {
	// Destination e-mail address.
	To string `json:"to" yaml:"to,omitempty"`
	// Sender e-mail address .
	From string `json:"from" yaml:"from,omitempty"`
	// Smarthost, aka "SMTP server"; address of server used to send email.
	Smarthost string `json:"smarthost" yaml:"smarthost,omitempty"`
	// Subject of the outgoing emails.
	Subject string `json:"subject" yaml:"subject,omitempty"`
	// Extra e-mail headers to be added to all outgoing messages.
	Headers map[string]string `json:"headers" yaml:"headers,omitempty"`
	// Authentication parameters.
	Auth SMTPAuth `json:"auth" yaml:"auth,omitempty"`
	// If "true" forces secure SMTP protocol (AKA StartTLS).
	RequireTLS bool `json:"requireTLS" yaml:"requireTLS"`
	// SMTP hello field (optional)
	Hello string `json:"hello" yaml:"hello,omitempty"`
}

type SMTPAuth struct {
	// Username for PLAN and LOGIN auth mechanisms.
	Username string `json:"username" yaml:"username,omitempty"`
	// Password for PLAIN and LOGIN auth mechanisms.
	Password string `json:"password" yaml:"password,omitempty"`
	// Identity for PLAIN auth mechanism
	Identity string `json:"identity" yaml:"identity,omitempty"`
	// Secret for CRAM-MD5 auth mechanism
	Secret string `json:"secret" yaml:"secret,omitempty"`
}

// New creates new config object
func New() (*Config, error) {
	c := &Config{}
	if err := c.Load(); err != nil {
		return c, err
	}

	return c, nil
}

func createIfNotExist() error {
	// create file if not exist
	configFile := getConfigFile()
	_, err := os.Stat(configFile)
	if err != nil {
		if os.IsNotExist(err) {
			file, err := os.Create(configFile)
			if err != nil {
				return err
			}
			file.Close()
		} else {
			return err
		}
	}
	return nil
}

// Load loads configuration from config file
func (c *Config) Load() error {
	err := createIfNotExist()
	if err != nil {
		return err
	}

	file, err := os.Open(getConfigFile())
	if err != nil {
		return err
	}
	defer file.Close()

	b, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	if len(b) != 0 {
		return yaml.Unmarshal(b, c)
	}

	return nil
}

func (c *Config) Write() error {
	f, err := os.OpenFile(getConfigFile(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	return enc.Encode(c)
}

func getConfigFile() string {
	// Use ~/.azurescope/scanner.yaml path
	return filepath.Join(configDir(), ConfigFileName)
}

func configDir() string {
	if configDir := os.Getenv("AZURESCOPE_CONFIG"); configDir != "" {
		return configDir
	}

	var home string
	if runtime.GOOS == "windows" {
		home = os.Getenv("USERPROFILE")
	} else {
		home = os.Getenv("HOME")
	}

	azurescopeDir := filepath.Join(home, ".azurescope")
	// Create directory if it doesn't exist
	if _, err := os.Stat(azurescopeDir); os.IsNotExist(err) {
		os.MkdirAll(azurescopeDir, 0755)
	}
	return azurescopeDir
}

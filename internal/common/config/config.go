// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	Server        ServerConfig       `mapstructure:"server"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Templates     TemplateConfig     `mapstructure:"templates"`
	Provider      ProviderConfig     `mapstructure:"provider"`
	Filing        FilingConfig       `mapstructure:"filing"`
	Tracker       TrackerConfig      `mapstructure:"tracker"`
	Agency        AgencyConfig       `mapstructure:"agency"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Logging       LoggingConfig      `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	DebugPort    int `mapstructure:"debug_port"`
	ReadTimeout  int `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout int `mapstructure:"write_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	AuditIndex string   `mapstructure:"audit_index"`
	Enabled    bool     `mapstructure:"enabled"`
}

// TemplateConfig locates the PDF template catalog on disk.
type TemplateConfig struct {
	Dir         string   `mapstructure:"dir"`
	RequestKeys []string `mapstructure:"request_keys"` // default requested template order
}

// ProviderConfig holds e-signature provider (SignNow-compatible) settings.
type ProviderConfig struct {
	BaseURL               string `mapstructure:"base_url"`
	AccessToken           string `mapstructure:"access_token"`
	WebhookSecret         string `mapstructure:"webhook_secret"`
	CallbackURL           string `mapstructure:"callback_url"`
	RegisterWebhook       bool   `mapstructure:"register_webhook"`
	NamePrefix            string `mapstructure:"name_prefix"`
	LinkExpirationMinutes int    `mapstructure:"link_expiration_minutes"`
	InviteExpirationDays  int    `mapstructure:"invite_expiration_days"`
	InviteReminderDays    int    `mapstructure:"invite_reminder_days"`
	RedirectURI           string `mapstructure:"redirect_uri"`
	DeclineRedirectURI    string `mapstructure:"decline_redirect_uri"`
	CloseRedirectURI      string `mapstructure:"close_redirect_uri"`
	Timeout               int    `mapstructure:"timeout"` // milliseconds
}

// FilingConfig holds the artifact filing store (GCS) settings.
type FilingConfig struct {
	Bucket string `mapstructure:"bucket"`
	Prefix string `mapstructure:"prefix"`
}

// TrackerConfig holds signing-tracker lifecycle settings.
type TrackerConfig struct {
	ExpireAfterHours     int `mapstructure:"expire_after_hours"`
	SweepIntervalMinutes int `mapstructure:"sweep_interval_minutes"`
}

// NotificationConfig holds settings for post-signing notifications.
type NotificationConfig struct {
	Email struct {
		Enabled    bool   `mapstructure:"enabled"`
		FromEmail  string `mapstructure:"from_email"`
		AgentEmail string `mapstructure:"agent_email"`
	} `mapstructure:"email"`
	SMS struct {
		Enabled    bool   `mapstructure:"enabled"`
		AgentPhone string `mapstructure:"agent_phone"`
	} `mapstructure:"sms"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

// AgencyConfig describes the fixed last signer on every packet.
type AgencyConfig struct {
	Name  string `mapstructure:"name"`
	Email string `mapstructure:"email"`
	Phone string `mapstructure:"phone"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

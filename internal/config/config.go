package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"FoodExpiryTracker/internal/apperr"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/ilyakaznacheev/cleanenv"
)

const (
	MailProviderResend = "resend"
	MailProviderSMTP   = "smtp"

	ItemFormatDated = "dated"
	ItemFormatName  = "name"
)

var dailyAtPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

type validatable interface {
	Validate() error
}

// readEnv fills cfg from the environment and validates it. Every failure is a
// configuration error and aborts startup.
func readEnv[T validatable](cfg T) error {
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrConfiguration, err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrConfiguration, err)
	}
	return nil
}

type ServerConfig struct {
	Port         int      `env:"PORT" env-default:"5000"`
	AllowOrigins []string `env:"CORS_ALLOW_ORIGINS" env-default:"*" env-separator:","`
}

func NewServerConfig() (*ServerConfig, error) {
	cfg := &ServerConfig{}
	if err := readEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *ServerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// Address returns the listen address for the HTTP server.
func (c *ServerConfig) Address() string {
	return ":" + strconv.Itoa(c.Port)
}

type AuthConfig struct {
	JWTKey   string        `env:"JWT_KEY" env-required:"true"`
	TokenTTL time.Duration `env:"JWT_TTL" env-default:"24h"`
}

func NewAuthConfig() (*AuthConfig, error) {
	cfg := &AuthConfig{}
	if err := readEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AuthConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.JWTKey, validation.Required),
		validation.Field(&c.TokenTTL, validation.Required),
	)
}

type MailConfig struct {
	Provider     string `env:"MAIL_PROVIDER" env-default:"resend"`
	From         string `env:"FROM_EMAIL"`
	FromName     string `env:"FROM_NAME" env-default:"Food Expiry Tracker"`
	ResendAPIKey string `env:"RESEND_API_KEY"`
	ResendAPIURL string `env:"RESEND_API_URL"`
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" env-default:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
}

func NewMailConfig() (*MailConfig, error) {
	cfg := &MailConfig{}
	if err := readEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *MailConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Provider, validation.Required, validation.In(MailProviderResend, MailProviderSMTP)),
		validation.Field(&c.From, validation.Required),
		validation.Field(&c.ResendAPIKey, validation.When(c.Provider == MailProviderResend, validation.Required)),
		validation.Field(&c.SMTPHost, validation.When(c.Provider == MailProviderSMTP, validation.Required)),
		validation.Field(&c.SMTPPort, validation.Min(1), validation.Max(65535)),
	)
}

// NotifyConfig drives the expiry notification pass and its schedule.
type NotifyConfig struct {
	Timezone        string `env:"NOTIFY_TIMEZONE" env-default:"Asia/Kolkata"`
	DailyAt         string `env:"NOTIFY_DAILY_AT" env-default:"08:00"`
	DayOffset       int    `env:"NOTIFY_DAY_OFFSET" env-default:"0"`
	RunOnStartup    bool   `env:"NOTIFY_RUN_ON_STARTUP" env-default:"true"`
	ItemFormat      string `env:"NOTIFY_ITEM_FORMAT" env-default:"dated"`
	Dedup           bool   `env:"NOTIFY_DEDUP" env-default:"false"`
	SendConcurrency int    `env:"NOTIFY_SEND_CONCURRENCY" env-default:"1"`

	// Location is resolved from Timezone during validation.
	Location *time.Location `env:"-"`
}

func NewNotifyConfig() (*NotifyConfig, error) {
	cfg := &NotifyConfig{}
	if err := readEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *NotifyConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Timezone, validation.Required),
		validation.Field(&c.DailyAt, validation.Required, validation.Match(dailyAtPattern).Error("must be HH:MM")),
		validation.Field(&c.DayOffset, validation.Min(0)),
		validation.Field(&c.ItemFormat, validation.Required, validation.In(ItemFormatDated, ItemFormatName)),
		validation.Field(&c.SendConcurrency, validation.Required, validation.Min(1)),
	); err != nil {
		return err
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	c.Location = loc
	return nil
}

// CronSpec returns the five-field cron expression for the daily alarm.
func (c *NotifyConfig) CronSpec() string {
	hour, minute, _ := strings.Cut(c.DailyAt, ":")
	h, _ := strconv.Atoi(hour)
	m, _ := strconv.Atoi(minute)
	return fmt.Sprintf("%d %d * * *", m, h)
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" env-default:"info"`
	Format string `env:"LOG_FORMAT" env-default:"json"`
}

func NewLogConfig() (*LogConfig, error) {
	cfg := &LogConfig{}
	if err := readEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *LogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Level, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.Format, validation.In("json", "console")),
	)
}

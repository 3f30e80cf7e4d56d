package config

import (
	"context"
	"strconv"
	"strings"

	dErrors "keydesk/pkg/domain-errors"
)

// Settings keys read at startup. The first three are required; the workflow
// must not perform any side effect when one of them is missing.
const (
	KeyAPIKey         = "API_KEY"
	KeyAccessPolicyID = "ACCESS_POLICY_ID"
	KeyRegion         = "REGION"

	KeySuccessEmailFrom = "SUCCESS_EMAIL_FROM"
	KeySuccessEmailName = "SUCCESS_EMAIL_NAME"
	KeyAdminEmail       = "ADMIN_EMAIL"

	KeyAddr              = "ADDR"
	KeyIssuanceEndpoint  = "ISSUANCE_ENDPOINT"
	KeyMailEndpoint      = "MAIL_ENDPOINT"
	KeySendGridAPIKey    = "SENDGRID_API_KEY"
	KeyDefaultExpiryDays = "DEFAULT_EXPIRY_DAYS"
	KeyIntakeSigningKey  = "INTAKE_SIGNING_KEY"
	KeyDatabaseURL       = "DATABASE_URL"
	KeyRedisURL          = "REDIS_URL"
	KeyKafkaBrokers      = "KAFKA_BROKERS"
	KeyLogLevel          = "LOG_LEVEL"
)

const (
	defaultAddr         = ":8080"
	defaultMailEndpoint = "https://api.sendgrid.com/v3/mail/send"
	defaultExpiryDays   = 90
)

// Config is the immutable configuration value for one process. It is loaded
// once at startup and threaded explicitly through every component; nothing
// reads settings as ambient state after Load returns.
type Config struct {
	// Issuance credentials; all three are required.
	APIKey         string
	AccessPolicyID string
	Region         string

	// Notification settings. AdminEmail empty means failure alerts are a
	// logged no-op.
	EmailFrom  string
	EmailName  string
	AdminEmail string

	Addr              string
	IssuanceEndpoint  string
	MailEndpoint      string
	SendGridAPIKey    string
	DefaultExpiryDays int
	IntakeSigningKey  string
	DatabaseURL       string
	RedisURL          string
	KafkaBrokers      []string
	LogLevel          string
}

// Load reads all settings through the given backend and validates the
// required keys. A missing required key yields a configuration error and
// must abort startup before any side effect.
func Load(ctx context.Context, settings Settings) (Config, error) {
	get := func(key string) (string, error) {
		value, _, err := settings.Lookup(ctx, key)
		if err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeConfiguration, "settings store unavailable")
		}
		return strings.TrimSpace(value), nil
	}

	cfg := Config{
		Addr:              defaultAddr,
		MailEndpoint:      defaultMailEndpoint,
		DefaultExpiryDays: defaultExpiryDays,
	}

	var err error
	if cfg.APIKey, err = get(KeyAPIKey); err != nil {
		return Config{}, err
	}
	if cfg.AccessPolicyID, err = get(KeyAccessPolicyID); err != nil {
		return Config{}, err
	}
	if cfg.Region, err = get(KeyRegion); err != nil {
		return Config{}, err
	}
	if cfg.IssuanceEndpoint, err = get(KeyIssuanceEndpoint); err != nil {
		return Config{}, err
	}

	for key, value := range map[string]string{
		KeyAPIKey:           cfg.APIKey,
		KeyAccessPolicyID:   cfg.AccessPolicyID,
		KeyRegion:           cfg.Region,
		KeyIssuanceEndpoint: cfg.IssuanceEndpoint,
	} {
		if value == "" {
			return Config{}, dErrors.Newf(dErrors.CodeConfiguration, "required setting %s is missing", key)
		}
	}

	if cfg.EmailFrom, err = get(KeySuccessEmailFrom); err != nil {
		return Config{}, err
	}
	if cfg.EmailName, err = get(KeySuccessEmailName); err != nil {
		return Config{}, err
	}
	if cfg.AdminEmail, err = get(KeyAdminEmail); err != nil {
		return Config{}, err
	}
	if cfg.SendGridAPIKey, err = get(KeySendGridAPIKey); err != nil {
		return Config{}, err
	}
	if cfg.IntakeSigningKey, err = get(KeyIntakeSigningKey); err != nil {
		return Config{}, err
	}
	if cfg.DatabaseURL, err = get(KeyDatabaseURL); err != nil {
		return Config{}, err
	}
	if cfg.RedisURL, err = get(KeyRedisURL); err != nil {
		return Config{}, err
	}
	if cfg.LogLevel, err = get(KeyLogLevel); err != nil {
		return Config{}, err
	}

	if addr, err := get(KeyAddr); err != nil {
		return Config{}, err
	} else if addr != "" {
		cfg.Addr = addr
	}

	if endpoint, err := get(KeyMailEndpoint); err != nil {
		return Config{}, err
	} else if endpoint != "" {
		cfg.MailEndpoint = endpoint
	}

	if days, err := get(KeyDefaultExpiryDays); err != nil {
		return Config{}, err
	} else if days != "" {
		parsed, parseErr := strconv.Atoi(days)
		if parseErr != nil || parsed <= 0 {
			return Config{}, dErrors.Newf(dErrors.CodeConfiguration, "setting %s must be a positive integer, got %q", KeyDefaultExpiryDays, days)
		}
		cfg.DefaultExpiryDays = parsed
	}

	if brokers, err := get(KeyKafkaBrokers); err != nil {
		return Config{}, err
	} else if brokers != "" {
		for _, broker := range strings.Split(brokers, ",") {
			if broker = strings.TrimSpace(broker); broker != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, broker)
			}
		}
	}

	return cfg, nil
}

package logger

import (
	"fmt"
	"os"
	"strings"

	"payment_reminder_bot/internal/infra/config"

	"github.com/sirupsen/logrus"
)

// Log is the global logger instance
var Log = logrus.New()

// maskedFields are entry fields that carry customer phone numbers or gateway secrets.
var maskedFields = []string{"recipient", "phone", "sender_number", "api_key"}

// Init configures the global logger from the application configuration.
func Init(cfg *config.AppConfig) {
	Log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		Log.Warnf("Invalid log level '%s', defaulting to 'info'. Error: %v", cfg.LogLevel, err)
		Log.SetLevel(logrus.InfoLevel)
	} else {
		Log.SetLevel(level)
	}

	switch strings.ToLower(cfg.Environment) {
	case "production", "staging":
		Log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
		Log.ReplaceHooks(logrus.LevelHooks{})
		Log.AddHook(maskHook{fields: maskedFields})
	default:
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			ForceColors:     true,
		})
		Log.ReplaceHooks(logrus.LevelHooks{})
	}

	Log.Debugf("Logger initialized: level=%s environment=%s", Log.GetLevel(), cfg.Environment)
}

// Component returns an entry tagged with the component name.
func Component(name string) *logrus.Entry {
	return Log.WithField("component", name)
}

// maskHook keeps the last four characters of sensitive fields.
type maskHook struct {
	fields []string
}

func (h maskHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h maskHook) Fire(entry *logrus.Entry) error {
	for _, name := range h.fields {
		v, ok := entry.Data[name]
		if !ok {
			continue
		}
		entry.Data[name] = mask(fmt.Sprint(v))
	}
	return nil
}

func mask(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}

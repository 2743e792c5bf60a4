package sentrynative

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// optionsFile is the YAML shape accepted by LoadOptions.
type optionsFile struct {
	DSN                 string   `yaml:"dsn"`
	Release             string   `yaml:"release"`
	Environment         string   `yaml:"environment"`
	Distribution        string   `yaml:"distribution"`
	SampleRate          *float64 `yaml:"sample_rate"`
	Debug               bool     `yaml:"debug"`
	Backend             string   `yaml:"backend"`
	RequireUserConsent  bool     `yaml:"require_user_consent"`
	MaxBreadcrumbs      *int     `yaml:"max_breadcrumbs"`
	AutoSessionTracking bool     `yaml:"auto_session_tracking"`
	DatabasePath        string   `yaml:"database_path"`
	HandlerPath         string   `yaml:"handler_path"`
	Attachments         []string `yaml:"attachments"`
	SystemCrashReporter bool     `yaml:"system_crash_reporter"`
}

// LoadOptions reads a YAML options file and stages it into Options. Values
// absent from the file keep their defaults. The result is a regular
// staging Options; callers can adjust it further before Init.
//
// Example file:
//
//	dsn: https://key@example.com/1
//	release: my-app@1.4.0
//	environment: production
//	backend: crashpad
//	handler_path: /usr/lib/my-app/crashpad_handler
//	database_path: /var/lib/my-app/.sentry-native
func LoadOptions(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read options file: %w", err)
	}

	var file optionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse options file: %w", err)
	}

	options := NewOptions()
	if err := applyOptionsFile(options, &file); err != nil {
		return nil, err
	}
	return options, nil
}

func applyOptionsFile(options *Options, file *optionsFile) error {
	if err := options.SetDSN(file.DSN); err != nil {
		return err
	}
	if err := options.SetRelease(file.Release); err != nil {
		return err
	}
	if err := options.SetEnvironment(file.Environment); err != nil {
		return err
	}
	if err := options.SetDistribution(file.Distribution); err != nil {
		return err
	}
	if file.SampleRate != nil {
		if err := options.SetSampleRate(*file.SampleRate); err != nil {
			return err
		}
	}
	if err := options.SetDebug(file.Debug); err != nil {
		return err
	}
	backend, err := parseBackend(file.Backend)
	if err != nil {
		return err
	}
	if err := options.SetBackend(backend); err != nil {
		return err
	}
	if err := options.SetRequireUserConsent(file.RequireUserConsent); err != nil {
		return err
	}
	if file.MaxBreadcrumbs != nil {
		if err := options.SetMaxBreadcrumbs(*file.MaxBreadcrumbs); err != nil {
			return err
		}
	}
	if err := options.SetAutoSessionTracking(file.AutoSessionTracking); err != nil {
		return err
	}
	if file.DatabasePath != "" {
		if err := options.SetDatabasePath(file.DatabasePath); err != nil {
			return err
		}
	}
	if err := options.SetHandlerPath(file.HandlerPath); err != nil {
		return err
	}
	for _, attachment := range file.Attachments {
		if err := options.AddAttachment(attachment); err != nil {
			return err
		}
	}
	return options.SetSystemCrashReporter(file.SystemCrashReporter)
}

func parseBackend(name string) (Backend, error) {
	switch name {
	case "", "default":
		return BackendDefault, nil
	case "inproc":
		return BackendInproc, nil
	case "crashpad":
		return BackendCrashpad, nil
	case "none":
		return BackendNone, nil
	default:
		return BackendDefault, &ConfigError{Field: "backend", Reason: fmt.Sprintf("unknown backend %q", name)}
	}
}

package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/danmuck/evlctl/internal/logging"
)

const templateHeader = "# evlctl configuration.\n" +
	"# Env overrides: " + EnvPassword + ", " + EnvStatusToken + ", " + logging.EnvLogLevel + ".\n" +
	"# Priorities: low | medium | high | critical.\n" +
	"# Notifier types: console | metrics. Logging types: console | file.\n\n"

func exampleFile() fileConfig {
	enabled := true
	return fileConfig{
		IP:             "127.0.0.1",
		Port:           4025,
		Password:       "user",
		ConnectTimeout: "5s",
		Zones: map[string]string{
			"001": "Front Door",
			"002": "Back Door",
		},
		Partitions: map[string]string{
			"1": "Main Floor",
		},
		Commands: map[string]string{},
		Priorities: map[string]string{
			"601": "critical",
			"609": "medium",
			"652": "high",
		},
		Logging: []fileLogging{
			{Type: "console", Name: "console", Level: "info"},
		},
		Notifiers: []fileNotifier{
			{Type: "console", Name: "console", Enabled: &enabled, Priority: "low"},
			{Type: "metrics", Name: "metrics", Enabled: &enabled, Priority: "medium"},
		},
		Status: fileStatus{
			Addr:        "127.0.0.1:7020",
			CorsOrigins: []string{"http://localhost:3000"},
			EventBuffer: 50,
			LastSeenTTL: "10m",
		},
	}
}

// Template renders an annotated example config that Load accepts.
func Template() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(templateHeader)
	enc := toml.NewEncoder(&buf).SetIndentTables(true)
	if err := enc.Encode(exampleFile()); err != nil {
		return nil, fmt.Errorf("render config template: %w", err)
	}
	return buf.Bytes(), nil
}

func WriteTemplate(path string, overwrite bool) error {
	template, err := Template()
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, template, 0o600)
}

package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/grovetools/sigscope/errors"
)

// Validate checks semantic constraints the schema cannot express.
func (c *Config) Validate() error {
	if c.Poll.Interval != "" {
		d, err := time.ParseDuration(c.Poll.Interval)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeConfigValidation, "invalid poll.interval").
				WithDetail("interval", c.Poll.Interval)
		}
		if d < 100*time.Millisecond {
			return errors.New(errors.ErrCodeConfigValidation, "poll.interval must be at least 100ms").
				WithDetail("interval", c.Poll.Interval)
		}
	}

	if c.History.Capacity < 0 {
		return errors.New(errors.ErrCodeConfigValidation, "history.capacity cannot be negative").
			WithDetail("capacity", c.History.Capacity)
	}

	switch c.Display.Position {
	case "", PositionRight, PositionLeft, PositionBottom:
	default:
		return errors.New(errors.ErrCodeConfigValidation, fmt.Sprintf("invalid display.position: %s", c.Display.Position)).
			WithDetail("position", c.Display.Position)
	}

	seen := make(map[string]bool, len(c.Sources))
	for _, src := range c.Sources {
		if err := validateSource(src); err != nil {
			return errors.Wrap(err, errors.ErrCodeConfigValidation, fmt.Sprintf("invalid source '%s'", src.Name)).
				WithDetail("source", src.Name)
		}
		if seen[src.Name] {
			return errors.New(errors.ErrCodeConfigValidation, fmt.Sprintf("duplicate source name '%s'", src.Name)).
				WithDetail("source", src.Name)
		}
		seen[src.Name] = true
	}

	return nil
}

func validateSource(src SourceConfig) error {
	if src.Name == "" {
		return errors.New(errors.ErrCodeConfigValidation, "source name cannot be empty")
	}

	switch src.Type {
	case SourceSSE, SourceWebSocket:
		return validateURL(src.URL)
	case SourceNATS:
		if src.Subject == "" {
			return errors.New(errors.ErrCodeConfigValidation, "nats source requires a subject")
		}
		if src.URL == "" {
			return nil
		}
		return validateURL(src.URL)
	case SourceTail:
		if src.Path == "" {
			return errors.New(errors.ErrCodeConfigValidation, "tail source requires a path")
		}
		return nil
	default:
		return errors.New(errors.ErrCodeConfigValidation, fmt.Sprintf("unknown source type: %s", src.Type)).
			WithDetail("type", src.Type)
	}
}

func validateURL(raw string) error {
	if raw == "" {
		return errors.New(errors.ErrCodeConfigValidation, "source requires a url")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New(errors.ErrCodeConfigValidation, fmt.Sprintf("invalid url: %s", raw)).
			WithDetail("url", raw)
	}
	return nil
}

package config

import "strings"

func (c *Config) normalize() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}

	c.Calendar.BaseURL = strings.TrimRight(strings.TrimSpace(c.Calendar.BaseURL), "/")

	c.Search.MinResolution = strings.ToLower(strings.TrimSpace(c.Search.MinResolution))
	c.Search.MaxResolution = strings.ToLower(strings.TrimSpace(c.Search.MaxResolution))
	c.Search.EventAllowlist = normalizeTokens(c.Search.EventAllowlist)
	c.Search.PreferredCodecs = normalizeTokens(c.Search.PreferredCodecs)
	c.Search.PreferredGroups = normalizeTokens(c.Search.PreferredGroups)

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))

	for i := range c.Notifications.Targets {
		target := &c.Notifications.Targets[i]
		target.Type = strings.ToLower(strings.TrimSpace(target.Type))
		target.URL = strings.TrimSpace(target.URL)
		target.Events = normalizeTokens(target.Events)
	}
	return nil
}

func normalizeTokens(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		token := strings.ToLower(strings.TrimSpace(value))
		if token == "" {
			continue
		}
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	return out
}

package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"racecarr/internal/config"
)

type commandContext struct {
	apiFlag    *string
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(apiFlag, configFlag *string) *commandContext {
	return &commandContext{
		apiFlag:    apiFlag,
		configFlag: configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// apiBaseURL resolves the daemon base URL: the --api flag wins, then the
// configured bind address, then the built-in default.
func (c *commandContext) apiBaseURL() string {
	if c.apiFlag != nil {
		if flag := strings.TrimSpace(*c.apiFlag); flag != "" {
			return strings.TrimRight(flag, "/")
		}
	}
	bind := ""
	if cfg, err := c.ensureConfig(); err == nil && cfg != nil {
		bind = strings.TrimSpace(cfg.Paths.APIBind)
	}
	if bind == "" {
		bind = "127.0.0.1:7787"
	}
	if strings.HasPrefix(bind, "http://") || strings.HasPrefix(bind, "https://") {
		return strings.TrimRight(bind, "/")
	}
	return "http://" + bind
}

func (c *commandContext) client() *apiClient {
	return newAPIClient(c.apiBaseURL())
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

package main

import (
	"io"
	"strings"
	"sync"

	"github.com/phrazzld/taskboard/internal/client"
	"github.com/phrazzld/taskboard/internal/config"
)

type commandContext struct {
	configFlag  *string
	apiURLFlag  *string
	noColorFlag *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	// httpDoer overrides the API client transport in tests.
	httpDoer client.HTTPDoer
}

func newCommandContext(configFlag, apiURLFlag *string, noColorFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		apiURLFlag:  apiURLFlag,
		noColorFlag: noColorFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		c.config, c.configErr = config.Load(path)
	})
	return c.config, c.configErr
}

func (c *commandContext) apiClient() *client.Client {
	baseURL := defaultAPIURL
	if c.apiURLFlag != nil && strings.TrimSpace(*c.apiURLFlag) != "" {
		baseURL = *c.apiURLFlag
	}
	return client.New(baseURL, c.httpDoer)
}

func (c *commandContext) colorize(w io.Writer) bool {
	if c.noColorFlag != nil && *c.noColorFlag {
		return false
	}
	return shouldColorize(w)
}

package main

import (
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"promptstudio/internal/client"
	"promptstudio/internal/infra"
	"promptstudio/internal/storage"
)

type commandContext struct {
	serverFlag  *string
	configFlag  *string
	outFlag     *string
	verboseFlag *bool

	stdout io.Writer
	stderr io.Writer

	configOnce sync.Once
	config     studioConfig
	configErr  error
}

func newCommandContext(serverFlag, configFlag, outFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{
		serverFlag:  serverFlag,
		configFlag:  configFlag,
		outFlag:     outFlag,
		verboseFlag: verboseFlag,
		stdout:      os.Stdout,
		stderr:      os.Stderr,
	}
}

func (c *commandContext) ensureConfig() (studioConfig, error) {
	c.configOnce.Do(func() {
		// .env is optional
		_ = godotenv.Load()

		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := loadConfig(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.serverFlag != nil && strings.TrimSpace(*c.serverFlag) != "" {
			cfg.Server = strings.TrimRight(strings.TrimSpace(*c.serverFlag), "/")
		}
		if c.outFlag != nil && strings.TrimSpace(*c.outFlag) != "" {
			if cfg.OutputDir, err = expandPath(*c.outFlag); err != nil {
				c.configErr = err
				return
			}
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger() infra.Logger {
	level := zerolog.WarnLevel
	if c.verboseFlag != nil && *c.verboseFlag {
		level = zerolog.DebugLevel
	}
	return infra.NewConsoleLogger(c.stderr, level)
}

func (c *commandContext) newClient() (*client.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger := c.logger()
	return client.New(cfg.Server,
		// Downloads stream through this client, so only headers are bounded.
		client.WithHTTPClient(&http.Client{Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			ResponseHeaderTimeout: 3 * time.Minute,
		}}),
		client.WithLogger(&logger),
		client.WithPollInterval(cfg.pollInterval()),
	)
}

func (c *commandContext) store() (*storage.FileStore, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return storage.NewFileStore(cfg.OutputDir)
}

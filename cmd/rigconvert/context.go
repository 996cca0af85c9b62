package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"rigconvert/internal/asset"
	"rigconvert/internal/assetstore"
	"rigconvert/internal/config"
	"rigconvert/internal/converr"
	"rigconvert/internal/logging"
	"rigconvert/internal/textutil"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = converr.Wrap(converr.ErrConfiguration, "", "load config", path, err)
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

// logger builds the command logger writing to the command's stderr.
func (c *commandContext) logger(cmd *cobra.Command) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Writer: cmd.ErrOrStderr(),
	})
}

// openStore opens the configured SQLite store. Callers close it.
func (c *commandContext) openStore() (*assetstore.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := assetstore.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open asset store: %w", err)
	}
	return store, nil
}

// withWriteLock runs fn while holding the store lock.
func (c *commandContext) withWriteLock(fn func() error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	lock, err := assetstore.AcquireLock(cfg.Paths.LockPath)
	if err != nil {
		return err
	}
	defer lock.Release()
	return fn()
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// resolveAsset accepts an asset id, a unique id prefix, or a store path.
// suggestionThreshold is the minimum token similarity for a "did you mean"
// hint on unresolved asset arguments.
const suggestionThreshold = 0.5

func resolveAsset(ctx context.Context, store assetstore.Backend, arg string) (asset.ID, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", errors.New("asset id or path is required")
	}
	if _, err := store.Load(ctx, asset.ID(arg)); err == nil {
		return asset.ID(arg), nil
	} else if !errors.Is(err, asset.ErrNotFound) {
		return "", err
	}
	if id, err := store.Resolve(ctx, arg); err == nil {
		return id, nil
	} else if !errors.Is(err, asset.ErrNotFound) {
		return "", err
	}

	entries, err := store.List(ctx, "")
	if err != nil {
		return "", err
	}
	var matches []asset.ID
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.HasPrefix(string(e.ID), arg) {
			matches = append(matches, e.ID)
		}
		paths = append(paths, e.Path)
	}
	switch len(matches) {
	case 0:
		if suggestion, ok := textutil.ClosestMatch(arg, paths, suggestionThreshold); ok {
			return "", fmt.Errorf("%q: %w (did you mean %q?)", arg, asset.ErrNotFound, suggestion)
		}
		return "", fmt.Errorf("%q: %w", arg, asset.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%q matches %d assets; use a longer prefix or a path", arg, len(matches))
	}
}

// formatError appends a next-step hint for classified failures.
func formatError(err error) string {
	msg := err.Error()
	var assetErr *converr.AssetError
	if converr.Classify(err) == converr.KindConversion && !errors.As(err, &assetErr) {
		return msg
	}
	if hint := converr.Hint(err); hint != "" {
		return msg + "\nhint: " + hint
	}
	return msg
}

// exitCode maps failure classes to process exit codes.
func exitCode(err error) int {
	switch converr.Classify(err) {
	case converr.KindInput:
		return 2
	case converr.KindStore:
		return 3
	case converr.KindInternal:
		return 4
	default:
		return 1
	}
}

func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}

package app

import (
	"image-workbench/internal/config"
	"image-workbench/internal/logger"
	"image-workbench/internal/models"
)

// Lifecycle persists session state when the application stops
type Lifecycle struct {
	cfg        *config.Config
	configPath string
	session    *models.Session
	logger     logger.Logger
	isShutdown bool
}

func NewLifecycle(cfg *config.Config, configPath string, session *models.Session, log logger.Logger) *Lifecycle {
	return &Lifecycle{
		cfg:        cfg,
		configPath: configPath,
		session:    session,
		logger:     log,
	}
}

// Shutdown writes the last opened directory back to the config file
func (l *Lifecycle) Shutdown() {
	if l.isShutdown {
		return
	}
	l.isShutdown = true

	if l.configPath == "" || l.session.LastDir() == l.cfg.LastDir {
		return
	}

	l.cfg.LastDir = l.session.LastDir()
	if err := config.SaveLastDir(l.configPath, l.cfg.LastDir); err != nil {
		l.logger.Error("Lifecycle", err, map[string]interface{}{"path": l.configPath})
		return
	}

	l.logger.Debug("Lifecycle", "session saved", map[string]interface{}{
		"path":     l.configPath,
		"last_dir": l.cfg.LastDir,
	})
}

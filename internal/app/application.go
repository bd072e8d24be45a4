package app

import (
	"context"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	"image-workbench/internal/config"
	"image-workbench/internal/controllers"
	"image-workbench/internal/dispatch"
	"image-workbench/internal/display"
	"image-workbench/internal/gui/uithread"
	"image-workbench/internal/logger"
	"image-workbench/internal/models"
	"image-workbench/internal/opencv/conversion"
	"image-workbench/internal/services"
	"image-workbench/internal/shutdown"
	"image-workbench/internal/views"
)

const (
	AppName    = "Experimental Image Processing Tool"
	AppID      = "com.imageworkbench.app"
	AppVersion = "1.0.0"
)

// Application is the desktop front end
type Application struct {
	fyneApp     fyne.App
	window      fyne.Window
	logger      logger.Logger
	coordinator *uithread.Coordinator
	dispatcher  *dispatch.Dispatcher
	controller  *controllers.MainController
	view        *views.MainView
	shutdown    *shutdown.Manager
	lifecycle   *Lifecycle
}

// NewApplication wires models, services, controller and view
func NewApplication(cfg *config.Config, configPath string, log logger.Logger) (*Application, error) {
	fyneApp := fyneapp.NewWithID(AppID)
	window := fyneApp.NewWindow(AppName)
	window.Resize(fyne.NewSize(float32(cfg.WindowWidth), float32(cfg.WindowHeight)))
	window.SetMaster()

	log.Info("Application", "starting application", map[string]interface{}{
		"version":       AppVersion,
		"window_width":  cfg.WindowWidth,
		"window_height": cfg.WindowHeight,
		"debug_enabled": cfg.Debug,
	})

	manager := shutdown.NewManager(log)
	session := models.NewSession(cfg.LastDir)

	coordinator := uithread.NewCoordinator(uithread.Fyne, log)
	dispatcher := dispatch.NewDispatcher(coordinator, nil, log)

	images := services.NewImageService(conversion.FileCodec{}, models.NewImageList(), session, cfg.ThumbnailSize, log)
	processing := services.NewProcessingService(dispatcher, conversion.GrayscaleOperation, conversion.Grayscale, log)

	controller := controllers.NewMainController(images, processing, coordinator,
		display.NewSize(cfg.WindowWidth, cfg.WindowHeight), log)
	view := views.NewMainView(manager.Context(), window, controller, cfg.ThumbnailSize, session.LastDir)
	controller.SetView(view)

	lifecycle := NewLifecycle(cfg, configPath, session, log)

	// Reverse order: controller, dispatcher, coordinator, then the session file.
	manager.Register("session", lifecycle)
	manager.Register("ui-coordinator", coordinator)
	manager.Register("dispatcher", dispatcher)
	manager.Register("controller", controller)

	application := &Application{
		fyneApp:     fyneApp,
		window:      window,
		logger:      log,
		coordinator: coordinator,
		dispatcher:  dispatcher,
		controller:  controller,
		view:        view,
		shutdown:    manager,
		lifecycle:   lifecycle,
	}

	log.Info("Application", "initialization complete", nil)
	return application, nil
}

// OpenFiles queues paths given on the command line
func (a *Application) OpenFiles(paths []string) {
	a.controller.OpenImages(a.shutdown.Context(), paths)
}

// Run shows the window and blocks until it is closed
func (a *Application) Run(ctx context.Context) error {
	// The shutdown context is cancelled before components stop; only Stop
	// may end the queue so results posted while the dispatcher drains still run.
	go a.coordinator.Run(context.Background())

	a.shutdown.Listen(func() {
		fyne.Do(a.fyneApp.Quit)
	})

	go func() {
		select {
		case <-ctx.Done():
			a.logger.Info("Application", "context cancelled, initiating shutdown", nil)
			a.shutdown.Shutdown()
			fyne.Do(a.fyneApp.Quit)
		case <-a.shutdown.Done():
		}
	}()

	a.window.SetCloseIntercept(func() {
		a.logger.Info("Application", "shutdown requested", nil)
		a.shutdown.Shutdown()
		a.window.Close()
	})

	a.logger.Info("Application", "GUI displayed", nil)
	a.window.ShowAndRun()

	a.shutdown.Shutdown()
	return nil
}

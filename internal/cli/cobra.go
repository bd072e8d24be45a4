// Package cli holds the cobra command tree of image-workbench.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"image-workbench/internal/app"
	"image-workbench/internal/config"
	"image-workbench/internal/display"
	"image-workbench/internal/logger"
	"image-workbench/internal/opencv/conversion"
)

// Root carries what every command needs once flags have been parsed
type Root struct {
	cfg        *config.Config
	configPath string
	log        logger.Logger

	// replaced in tests
	NewHeadless func(cfg *config.Config, viewport display.Size, log logger.Logger) *app.Headless
	RunGUI      func(ctx context.Context, cfg *config.Config, configPath string, files []string, log logger.Logger) error
}

// NewRoot creates a Root using OpenCV for decoding and conversion
func NewRoot() *Root {
	return &Root{
		NewHeadless: func(cfg *config.Config, viewport display.Size, log logger.Logger) *app.Headless {
			return app.NewHeadless(conversion.FileCodec{}, conversion.GrayscaleOperation, conversion.Grayscale, viewport, log)
		},
		RunGUI: runGUI,
	}
}

func runGUI(ctx context.Context, cfg *config.Config, configPath string, files []string, log logger.Logger) error {
	application, err := app.NewApplication(cfg, configPath, log)
	if err != nil {
		return err
	}
	application.OpenFiles(files)
	return application.Run(ctx)
}

// NewRootCmd creates the root Cobra command
func NewRootCmd(root *Root) *cobra.Command {
	var (
		logLevel  string
		logFormat string
	)

	rootCmd := &cobra.Command{
		Use:   "image-workbench [image...]",
		Short: "Experimental image processing tool",
		Long: `Opens images in a desktop window, shows the selected one fitted to the
viewport and converts it to grayscale on a background worker.`,
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if cmd.Flags().Changed("log-format") {
				cfg.LogFormat = logFormat
			}
			_ = cfg.Validate()

			root.cfg = cfg
			root.log = logger.New(cfg.LogFormat, logger.ParseLevel(cfg.LogLevel))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.RunGUI(cmd.Context(), root.cfg, root.configPath, args, root.log)
		},
	}

	rootCmd.PersistentFlags().StringVar(&root.configPath, "config", config.DefaultPath(), "config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console, json)")

	rootCmd.AddCommand(newGUICmd(root))
	rootCmd.AddCommand(newGrayCmd(root))
	rootCmd.AddCommand(newInfoCmd(root))
	rootCmd.AddCommand(newConfigCmd(root))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newGUICmd(root *Root) *cobra.Command {
	return &cobra.Command{
		Use:   "gui [image...]",
		Short: "Open the desktop window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.RunGUI(cmd.Context(), root.cfg, root.configPath, args, root.log)
		},
	}
}

func newGrayCmd(root *Root) *cobra.Command {
	var (
		viewport string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "gray <input> <output>",
		Short: "Convert an image to grayscale without opening a window",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := root.viewport(viewport)
			if err != nil {
				return err
			}

			report, err := root.NewHeadless(root.cfg, size, root.log).Convert(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s: %dx%d, %d channel(s), zoom %.0f%%, %s\n",
				args[0], args[1], report.Output.Width, report.Output.Height, report.Output.Channels,
				report.Output.Zoom, report.Duration.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVar(&viewport, "viewport", "", "viewport as WIDTHxHEIGHT (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func newInfoCmd(root *Root) *cobra.Command {
	var (
		viewport string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "info <input>",
		Short: "Print the shape of an image and its zoom when fitted to the viewport",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := root.viewport(viewport)
			if err != nil {
				return err
			}

			info, err := root.NewHeadless(root.cfg, size, root.log).Info(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), info)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %dx%d, %d channel(s), zoom %.0f%% in %dx%d\n",
				info.Name, info.Width, info.Height, info.Channels, info.Zoom, size.Width, size.Height)
			return nil
		},
	}

	cmd.Flags().StringVar(&viewport, "viewport", "", "viewport as WIDTHxHEIGHT (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func newConfigCmd(root *Root) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(root.configPath); err == nil && !force {
				return errors.Errorf("%s already exists (use --force to overwrite)", root.configPath)
			}
			if err := config.DefaultConfig().Save(root.configPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", root.configPath)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", root.configPath)
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			defer enc.Close()
			return enc.Encode(root.cfg)
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("%s v%s\n", app.AppName, app.AppVersion)
		},
	}
}

func (r *Root) viewport(flag string) (display.Size, error) {
	if flag == "" {
		return display.NewSize(r.cfg.ViewportWidth, r.cfg.ViewportHeight), nil
	}
	return ParseViewport(flag)
}

// ParseViewport parses WIDTHxHEIGHT
func ParseViewport(s string) (display.Size, error) {
	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return display.Size{}, errors.Errorf("viewport %q is not WIDTHxHEIGHT", s)
	}
	width, err := strconv.Atoi(strings.TrimSpace(w))
	if err != nil || width <= 0 {
		return display.Size{}, errors.Errorf("invalid viewport width in %q", s)
	}
	height, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil || height <= 0 {
		return display.Size{}, errors.Errorf("invalid viewport height in %q", s)
	}
	return display.NewSize(width, height), nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

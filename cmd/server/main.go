package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/easayliu/tg-autorename/docs"
	"github.com/easayliu/tg-autorename/internal/application/container"
	"github.com/easayliu/tg-autorename/internal/infrastructure/config"
	"github.com/easayliu/tg-autorename/internal/infrastructure/ffmpeg"
	"github.com/easayliu/tg-autorename/internal/infrastructure/repository"
	"github.com/easayliu/tg-autorename/internal/interfaces/http/routes"
	"github.com/easayliu/tg-autorename/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var cfgFile string

// @title Telegram Auto Rename Bot API
// @version 1.0
// @description 自动重命名机器人的管理接口

// @license.name MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
func main() {
	rootCmd := &cobra.Command{
		Use:   "autorename",
		Short: "Telegram auto rename bot",
		Long: `autorename receives documents, videos and audio files sent to the bot in private chats,
renames them with the sender's template, tags them with ffmpeg and sends them back.`,
		SilenceUsage: true,
		RunE:         runServe,
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (default ./configs/config.yaml or ./config.yaml)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the bot and the management API",
		RunE:  runServe,
	})
	rootCmd.AddCommand(newDoctorCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Log.LoggerOptions()); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化服务容器
	services, err := container.NewServiceContainer(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize service container: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := services.Start(ctx); err != nil {
		services.Shutdown()
		return err
	}

	var server *http.Server
	if cfg.Server.Enabled {
		router := routes.SetupRoutes(routes.Dependencies{
			Config:      cfg,
			Preferences: services.GetPreferenceService(),
			Queue:       services.GetRenameQueue(),
			Webhook:     services.GetTelegramController().Webhook,
		})
		server = &http.Server{Addr: cfg.Server.Address(), Handler: router}

		// 启动服务器
		go func() {
			logger.Info("Starting server", "address", server.Addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("HTTP server failed", "error", err)
				stop()
			}
		}()
	}

	// 等待退出信号
	<-ctx.Done()
	logger.Info("Shutting down...")

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP server shutdown failed", "error", err)
		}
	}

	if err := services.Shutdown(); err != nil {
		return err
	}
	logger.Info("Server stopped")
	return nil
}

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, ffmpeg and the preference database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			var failed bool
			report := func(name string, err error, detail string) {
				if err != nil {
					failed = true
					fmt.Fprintf(cmd.OutOrStdout(), "[FAIL] %s: %v\n", name, err)
					return
				}
				fmt.Fprintf(cmd.OutOrStdout(), "[ OK ] %s %s\n", name, detail)
			}

			report("config", cfg.Validate(), "")

			path, err := ffmpeg.NewTagger(cfg.Rename.FFmpegPath).CheckAvailable()
			report("ffmpeg", err, path)

			repo, err := repository.NewPreferenceRepository(cfg.Storage.DatabasePath)
			if err == nil {
				var n int64
				n, err = repo.Count(cmd.Context())
				repo.Close()
				report("database", err, fmt.Sprintf("%s (%d users)", cfg.Storage.DatabasePath, n))
			} else {
				report("database", err, "")
			}

			if failed {
				return errors.New("one or more checks failed")
			}
			return nil
		},
	}
}

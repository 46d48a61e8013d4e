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

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"catmatch/internal/api"
	"catmatch/internal/logger"
	"catmatch/internal/middleware"
	"catmatch/internal/repository"
	"catmatch/internal/service"
	"catmatch/internal/storage"
	"catmatch/internal/utils"
	"catmatch/pkg/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "catmatch",
	Short:         "catmatch - 貓咪配對與即時聊天服務",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "啟動 HTTP 與 WebSocket 服務",
	RunE:  runServe,
}

var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "管理每日超級喜歡額度",
}

var quotaResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "重置貓咪或帳號的超級喜歡額度",
	RunE:  runQuotaReset,
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "為帳號簽發測試用的 JWT",
	RunE:  runToken,
}

var (
	resetCatID     uint
	resetAccountID uint
	tokenAccountID uint
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "設定檔所在目錄")

	quotaResetCmd.Flags().UintVar(&resetCatID, "cat", 0, "要重置的貓咪 ID")
	quotaResetCmd.Flags().UintVar(&resetAccountID, "account", 0, "要重置的帳號 ID（其名下所有貓咪）")
	quotaCmd.AddCommand(quotaResetCmd)

	tokenCmd.Flags().UintVar(&tokenAccountID, "account", 0, "帳號 ID")
	_ = tokenCmd.MarkFlagRequired("account")

	rootCmd.AddCommand(serveCmd, quotaCmd, tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	return config.Load()
}

// openRepositories 建立資料庫連接並遷移結構
func openRepositories(cfg *config.Config, log zerolog.Logger) (*storage.DB, *repository.Repositories, error) {
	db, err := storage.Open(cfg.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize database: %w", err)
	}

	if err := db.AutoMigrate(repository.Models()...); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("auto migrate database: %w", err)
	}
	log.Info().Str("driver", cfg.DB.Driver).Msg("database ready")

	return db, repository.NewRepositories(db), nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.JWT.Secret == "" {
		return errors.New("jwt.secret must be set (CATMATCH_JWT_SECRET)")
	}

	log := logger.New(cfg.Log)

	db, repos, err := openRepositories(cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	services := service.NewServices(repos, service.Options{
		SuperLikesPerDay: cfg.Quota.SuperLikesPerDay,
		Realtime: service.RealtimeOptions{
			PingInterval:   cfg.Realtime.PingInterval,
			PongWait:       cfg.Realtime.PongWait,
			WriteWait:      cfg.Realtime.WriteWait,
			SendBuffer:     cfg.Realtime.SendBuffer,
			MaxMessageSize: cfg.Realtime.MaxMessageSize,
		},
	}, log)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log.With().Str("component", "http").Logger()))
	api.SetupRoutes(r, services, api.RouterOptions{
		Tokens:         utils.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL),
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Log:            log,
	})

	handler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(r)

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("address", cfg.Server.Address).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("run server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runQuotaReset(cmd *cobra.Command, args []string) error {
	if (resetCatID == 0) == (resetAccountID == 0) {
		return errors.New("exactly one of --cat or --account is required")
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Log)

	db, repos, err := openRepositories(cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	quota := service.NewQuotaService(repos, cfg.Quota.SuperLikesPerDay, log.With().Str("component", "quota").Logger())
	if resetCatID != 0 {
		if err := quota.ResetForCat(cmd.Context(), resetCatID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "reset super like quota for cat %d\n", resetCatID)
		return nil
	}

	n, err := quota.ResetForAccount(cmd.Context(), resetAccountID)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "reset super like quota for %d cat(s) of account %d\n", n, resetAccountID)
	return nil
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.JWT.Secret == "" {
		return errors.New("jwt.secret must be set (CATMATCH_JWT_SECRET)")
	}

	token, err := utils.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL).GenerateToken(tokenAccountID)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

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
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"classroom-booking/config"
	"classroom-booking/controllers"
	"classroom-booking/routes"
	"classroom-booking/services"
	"classroom-booking/shell"
	"classroom-booking/stores"
	"classroom-booking/utils"
)

type describer interface {
	Describe() string
}

type app struct {
	cfg    *config.Config
	logger *zap.Logger
	svc    *services.RoomService
	where  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dataFile, driver string

	root := &cobra.Command{
		Use:           "booking",
		Short:         "Classroom booking system",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context(), dataFile, driver)
			if err != nil {
				return err
			}
			defer a.logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return shell.New(a.svc, os.Stdin, os.Stdout, a.where, a.logger).Run(ctx)
		},
	}
	root.PersistentFlags().StringVar(&dataFile, "data-file", "", "bookings file (overrides DATA_FILE)")
	root.PersistentFlags().StringVar(&driver, "store", "", "csv or mysql (overrides STORE_DRIVER)")

	root.AddCommand(newServeCmd(&dataFile, &driver), newExportCmd(&dataFile, &driver))
	return root
}

func newServeCmd(dataFile, driver *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the booking API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context(), *dataFile, *driver)
			if err != nil {
				return err
			}
			defer a.logger.Sync()
			return serve(a)
		},
	}
}

func newExportCmd(dataFile, driver *string) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all rooms to an xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context(), *dataFile, *driver)
			if err != nil {
				return err
			}
			defer a.logger.Sync()

			data, err := utils.GenerateRoomsExport(a.svc.ListAll())
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			a.logger.Info("export written", zap.String("path", output))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "rooms.xlsx", "output file")
	return cmd
}

func bootstrap(ctx context.Context, dataFile, driver string) (*app, error) {
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, ".env could not be loaded: %v; continuing with environment variables\n", err)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		return nil, err
	}
	if dataFile != "" {
		cfg.DataFile = dataFile
	}
	if driver != "" {
		cfg.StoreDriver = driver
	}

	logger, err := config.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR: logger:", err)
		return nil, err
	}

	var store services.Store
	switch cfg.StoreDriver {
	case "mysql":
		dsn, err := config.ResolveMySQLDSN()
		if err != nil {
			logger.Error("invalid database configuration", zap.Error(err))
			return nil, err
		}
		db, err := config.ConnectDatabase(dsn, logger)
		if err != nil {
			logger.Error("database connect failed", zap.Error(err))
			return nil, err
		}
		store = stores.NewMySQLStore(db, logger)
	case "csv":
		store = stores.NewCSVStore(cfg.DataFile, logger)
	default:
		err := fmt.Errorf("unknown store %q (want csv or mysql)", cfg.StoreDriver)
		logger.Error("invalid store", zap.Error(err))
		return nil, err
	}

	svc := services.NewRoomService(store, logger)
	if err := svc.Bootstrap(ctx); err != nil {
		logger.Error("failed to load rooms", zap.Error(err))
		return nil, err
	}

	where := cfg.DataFile
	if d, ok := store.(describer); ok {
		where = d.Describe()
	}
	return &app{cfg: cfg, logger: logger, svc: svc, where: where}, nil
}

func serve(a *app) error {
	gin.SetMode(a.cfg.GinMode)

	rc := controllers.NewRoomController(a.svc, a.logger)
	router := routes.SetupRouter(rc, a.cfg.CorsOrigins, a.logger)

	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("data", a.where))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		a.logger.Error("listen failed", zap.Error(err))
		return err
	case <-quit:
	}
	a.logger.Info("shutdown signal received, shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		a.logger.Error("server forced to shutdown", zap.Error(err))
		return err
	}
	if err := a.svc.Flush(ctx); err != nil {
		a.logger.Error("final save failed", zap.Error(err))
		return err
	}

	a.logger.Info("server stopped gracefully")
	return nil
}

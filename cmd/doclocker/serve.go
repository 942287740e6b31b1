package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/meowdada/doclocker/auth"
	"github.com/meowdada/doclocker/metrics"
	"github.com/meowdada/doclocker/web"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the document locker web application",
	Long: `Serve the document locker web application.

serve holds the lock on the store directory, so list, stat, remove and
users cannot open it until the server stops.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	if len(cfg.IPFS.Token) == 0 {
		logger.Warn("no pinning token configured, uploads will be rejected by authenticated services")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	observer, err := metrics.NewObserver("", reg)
	if err != nil {
		return err
	}

	sessions := auth.NewLocalJWTHandler(cfg.Auth.Secret, cfg.Auth.TokenTTL, cfg.Auth.SessionTTL)
	defer sessions.Stop()
	if len(cfg.Auth.Secret) == 0 {
		logger.Warn("no session secret configured, sessions end on restart")
	}

	wallets := auth.NewWalletVerifier(cfg.Auth.ChallengeTTL)
	defer wallets.Stop()
	if len(cfg.Auth.GovernmentWallets) == 0 {
		logger.Warn("no government wallets configured, the government role is unavailable")
	}

	server := web.NewServer(web.Config{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Debug:        cfg.Server.Debug,
		CORSOrigins:  cfg.Server.CORSOrigins,
		StaticDir:    cfg.Server.StaticDir,
		Upload: web.UploadConfig{
			TempDir:   cfg.Upload.TempDir,
			MaxBytes:  cfg.Upload.MaxBytes,
			RateLimit: cfg.Upload.RateLimit,
			Burst:     cfg.Upload.Burst,
		},
		GovernmentWallets: cfg.Auth.GovernmentWallets,
	}, web.Deps{
		Uploader: a.uploader(),
		Users:    a.users,
		Lister:   a.drive,
		Sessions: sessions,
		Wallets:  wallets,
		Observer: observer,
		Gatherer: reg,
		Logger:   logger.Named("web"),
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting doclocker",
		zap.String("addr", cfg.Server.Addr),
		zap.String("ipfs", cfg.IPFS.API),
		zap.String("gateway", cfg.IPFS.Gateway),
	)
	return server.Run(ctx)
}

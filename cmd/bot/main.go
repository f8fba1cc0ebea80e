package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dharmaRaavi/real-estate-chatbot/internal/adapter/httpapi"
	telegramAdapter "github.com/dharmaRaavi/real-estate-chatbot/internal/adapter/telegram"
	"github.com/dharmaRaavi/real-estate-chatbot/internal/adapter/terminal"
	"github.com/dharmaRaavi/real-estate-chatbot/internal/config"
	"github.com/dharmaRaavi/real-estate-chatbot/internal/domain"
	"github.com/dharmaRaavi/real-estate-chatbot/internal/infra/estateapi"
	"github.com/dharmaRaavi/real-estate-chatbot/internal/infra/memory"
	redisStore "github.com/dharmaRaavi/real-estate-chatbot/internal/infra/redis"
	sqliteRepo "github.com/dharmaRaavi/real-estate-chatbot/internal/infra/sqlite"
	"github.com/dharmaRaavi/real-estate-chatbot/internal/logger"
	"github.com/dharmaRaavi/real-estate-chatbot/internal/usecase"
)

func main() {
	root := &cobra.Command{
		Use:           "leadbot",
		Short:         "Real-estate lead assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newBotCmd(), newChatCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	log, err := logger.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, log, nil
}

func newBackend(cfg config.Config) *estateapi.Client {
	return estateapi.NewClient(cfg.BackendBaseURL, estateapi.WithTimeout(cfg.RequestTimeout))
}

func newBotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot and the health server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck
			return runBot(cmd.Context(), cfg, log)
		},
	}
}

func runBot(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	if cfg.TelegramToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is not set")
	}

	store, err := openStorage(cfg, log)
	if err != nil {
		return err
	}
	defer store.close()

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return errors.Wrap(err, "create telegram bot")
	}
	log.Info("authorized", zap.String("bot", bot.Self.UserName))

	funnelUC := usecase.NewFunnelUsecase(store.funnel, log.Named("funnel"))
	broadcastUC := usecase.NewBroadcastUsecase(store.users, telegramAdapter.NewSender(bot), store.stats, cfg.BroadcastRate, log.Named("broadcast"))
	handler := telegramAdapter.NewHandler(bot, newBackend(cfg), store.users,
		telegramAdapter.WithAdmins(cfg.Admins()),
		telegramAdapter.WithBroadcast(broadcastUC),
		telegramAdapter.WithFunnel(funnelUC),
		telegramAdapter.WithImageBaseURL(cfg.ImageBaseURL),
		telegramAdapter.WithRequestTimeout(cfg.RequestTimeout),
		telegramAdapter.WithLogger(log.Named("telegram")),
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpapi.NewRouter(funnelUC, log.Named("http"))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		handler.Run(gctx, updates)
		return nil
	})
	g.Go(func() error {
		return httpapi.Serve(gctx, cfg.HealthAddr, router, log.Named("http"))
	})
	g.Go(func() error {
		<-gctx.Done()
		bot.StopReceivingUpdates()
		return nil
	})
	err = g.Wait()
	log.Info("bot stopped")
	return err
}

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Talk to the assistant in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			view := terminal.NewView(cmd.OutOrStdout())
			conv := usecase.NewConversation(newBackend(cfg), view,
				usecase.WithRequestTimeout(cfg.RequestTimeout),
				usecase.WithLogger(log.Named("chat")),
			)
			session := terminal.NewSession(conv, view, cmd.InOrStdin(), terminal.HuhFiller{}, log.Named("chat"))
			return session.Run(cmd.Context())
		},
	}
}

type storage struct {
	users  domain.VisitorRegistry
	funnel usecase.FunnelRepository
	stats  usecase.BroadcastStatRepository
	closer func() error
}

func (s storage) close() {
	if s.closer != nil {
		_ = s.closer()
	}
}

func openStorage(cfg config.Config, log *zap.Logger) (storage, error) {
	log.Info("storage", zap.String("driver", cfg.StorageDriver))
	switch cfg.StorageDriver {
	case config.StorageMemory:
		s := memory.NewStore()
		return storage{users: s, funnel: s, stats: s}, nil
	case config.StorageRedis:
		rdb, err := redisStore.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return storage{}, err
		}
		s := redisStore.NewStore(rdb, cfg.RedisPrefix)
		return storage{users: s, funnel: s, stats: s, closer: rdb.Close}, nil
	default:
		s, err := sqliteRepo.Open(cfg.SQLiteDSN)
		if err != nil {
			return storage{}, err
		}
		return storage{users: s, funnel: s, stats: s, closer: s.Close}, nil
	}
}

package postgres

import (
	"context"
	"fmt"

	"gap_bot/internal/models"
	"gap_bot/internal/modules/config"
	"gap_bot/internal/modules/postgres/pg"
	"gap_bot/pkg/db"
	"gap_bot/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// Module поднимает пул и репозиторий настроек; торговый профиль
// отдаётся наружу как *models.TradingSettings.
func Module() fx.Option {
	return fx.Module("postgres",
		fx.Provide(
			func(ctx context.Context, cfg *config.Config) (*db.PgTxManager, error) {
				poolMaster, err := db.NewPool(ctx, db.PoolConfig{
					DSN: cfg.DB,
				})
				if err != nil {
					return nil, fmt.Errorf("failed to create poolMaster: %w", err)
				}

				err = poolMaster.Ping(ctx)
				if err != nil {
					return nil, err
				}

				return db.NewPgTxManager(poolMaster), nil
			},
		),
		fx.Provide(
			pg.NewAccounts, // func(*db.PgTxManager) *pg.Accounts
		),
		fx.Provide(
			loadTradingSettings,
		),
	)
}

// loadTradingSettings достаёт профиль по chat_id; профиля нет — заводим
// из значений конфига, чтобы следующий старт читал уже из базы.
func loadTradingSettings(ctx context.Context, cfg *config.Config, accounts *pg.Accounts) (*models.TradingSettings, error) {
	if err := accounts.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	acc, err := accounts.GetByChatID(ctx, cfg.Telegram.ChatID)
	if err == nil {
		logger.Info("trading settings loaded from db, chat_id=%d", cfg.Telegram.ChatID)
		return &acc.Trading, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	acc = &models.AccountSettings{
		ChatID: cfg.Telegram.ChatID,
		Name:   cfg.InstID,
		Trading: models.TradingSettings{
			APIKey:     cfg.Gateway.APIKey,
			APISecret:  cfg.Gateway.APISecret,
			Passphrase: cfg.Gateway.Passphrase,

			RiskPerTrade:      cfg.RiskPerTrade,
			MaxTradesPerDay:   cfg.MaxTradesPerDay,
			AdditionalTradeBy: models.AdditionalTradeMode(cfg.AdditionalMode),

			PerformanceProtection: cfg.PerformanceProtection,
			MinProfitFactor:       cfg.MinProfitFactor,
			MinAverageTrade:       cfg.MinAverageTrade,
		},
	}
	if err := accounts.Upsert(ctx, acc); err != nil {
		return nil, err
	}
	logger.Info("trading settings bootstrapped from config, chat_id=%d", cfg.Telegram.ChatID)
	return &acc.Trading, nil
}

package pg

import (
	"context"

	"gap_bot/internal/models"
	"gap_bot/pkg/db"

	"github.com/bytedance/sonic"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

// Accounts — репозиторий настроек аккаунта. Торговый профиль хранится
// jsonb-блобом: структура меняется чаще, чем хочется гонять миграции.
type Accounts struct {
	db *db.PgTxManager
}

// NewAccounts instance
func NewAccounts(txm *db.PgTxManager) *Accounts {
	return &Accounts{db: txm}
}

const accountsSchema = `
CREATE TABLE IF NOT EXISTS account_settings (
    id         BIGSERIAL PRIMARY KEY,
    chat_id    BIGINT      NOT NULL UNIQUE,
    name       TEXT        NOT NULL DEFAULT '',
    trading    JSONB       NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

func (a *Accounts) EnsureSchema(ctx context.Context) error {
	_, err := a.db.Conn().Exec(ctx, accountsSchema)
	if err != nil {
		return errors.Wrap(err, "pg.EnsureSchema")
	}
	return nil
}

// GetByChatID возвращает pgx.ErrNoRows, если профиль ещё не заведён.
func (a *Accounts) GetByChatID(ctx context.Context, chatID int64) (*models.AccountSettings, error) {
	var (
		acc  models.AccountSettings
		blob []byte
	)
	row := a.db.Conn().QueryRow(ctx,
		`SELECT id, chat_id, name, trading FROM account_settings WHERE chat_id = $1`, chatID)
	if err := row.Scan(&acc.ID, &acc.ChatID, &acc.Name, &blob); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, errors.Wrap(err, "pg.GetByChatID")
	}
	if err := sonic.Unmarshal(blob, &acc.Trading); err != nil {
		return nil, errors.Wrap(err, "pg.GetByChatID: decode trading")
	}
	return &acc, nil
}

func (a *Accounts) Upsert(ctx context.Context, acc *models.AccountSettings) error {
	blob, err := sonic.Marshal(&acc.Trading)
	if err != nil {
		return errors.Wrap(err, "pg.Upsert: encode trading")
	}

	err = a.db.RunMaster(ctx, func(ctxTx context.Context, tx db.Transaction) error {
		return tx.QueryRow(ctxTx, `
			INSERT INTO account_settings (chat_id, name, trading)
			VALUES ($1, $2, $3)
			ON CONFLICT (chat_id) DO UPDATE
			SET name = EXCLUDED.name, trading = EXCLUDED.trading, updated_at = now()
			RETURNING id`,
			acc.ChatID, acc.Name, blob,
		).Scan(&acc.ID)
	})
	if err != nil {
		return errors.Wrap(err, "pg.Upsert")
	}
	return nil
}

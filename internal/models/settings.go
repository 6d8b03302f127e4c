package models

// AdditionalTradeMode — политика повторных входов после первой сделки дня.
type AdditionalTradeMode string

const (
	// ModeAggressive — каждый следующий вход разрешён до дневного лимита.
	ModeAggressive AdditionalTradeMode = "aggressive"
	// ModeConservative — следующий вход только если цена не ушла против
	// направления последней сделки от её исходной цены входа.
	ModeConservative AdditionalTradeMode = "conservative"
)

// AccountSettings — запись аккаунта в postgres (telegram chat + настройки).
type AccountSettings struct {
	ID int64 `json:"id"`

	ChatID int64 `json:"chat_id"` // Telegram chat ID для уведомлений

	Name    string          `json:"name"`
	Trading TradingSettings `json:"settings"`
}

// TradingSettings — торговые настройки аккаунта. Хранится sonic-JSON блобом.
type TradingSettings struct {
	// шлюз
	APIKey     string `json:"api_key"`
	APISecret  string `json:"api_secret"`
	Passphrase string `json:"passphrase"`

	// риск
	RiskPerTrade float64 `json:"risk_per_trade"` // фиксированный $-риск на сделку

	// дневные лимиты
	MaxTradesPerDay   int                 `json:"max_trades_per_day"` // -1 = без лимита
	AdditionalTradeBy AdditionalTradeMode `json:"additional_trade_mode"`

	// годовая защита
	PerformanceProtection bool    `json:"performance_protection"`
	MinProfitFactor       float64 `json:"min_profit_factor"`
	MinAverageTrade       float64 `json:"min_average_trade"`
}

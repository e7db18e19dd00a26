package store

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AccountConfig carries an account identity and its encrypted exchange
// keys. Keys are AES-256-GCM blobs, base64-encoded; the master
// passphrase comes from the environment, never from this file.
type AccountConfig struct {
	ID                 string `yaml:"id"`
	EncryptedAPIKey    string `yaml:"encrypted_api_key"`
	EncryptedAPISecret string `yaml:"encrypted_api_secret"`
}

type Config struct {
	Mode          string          `yaml:"mode"` // PAPER or LIVE
	Timeframe     string          `yaml:"timeframe"`
	PollSeconds   int             `yaml:"poll_seconds"`
	CandleLimit   int             `yaml:"candle_limit"`
	QuoteCurrency string          `yaml:"quote_currency"`
	Symbols       []string        `yaml:"symbols"`
	Accounts      []AccountConfig `yaml:"accounts"`

	CycleTimeoutSeconds int `yaml:"cycle_timeout_seconds"`

	Indicators struct {
		RSIPeriod  int `yaml:"rsi_period"`
		SMAShort   int `yaml:"sma_short"`
		SMALong    int `yaml:"sma_long"`
		EMAFast    int `yaml:"ema_fast"`
		EMASlow    int `yaml:"ema_slow"`
		MACDSignal int `yaml:"macd_signal"`
	} `yaml:"indicators"`

	Thresholds struct {
		RSIOversold         float64 `yaml:"rsi_oversold"`
		RSIOverbought       float64 `yaml:"rsi_overbought"`
		RSIStrongOversold   float64 `yaml:"rsi_strong_oversold"`
		RSIStrongOverbought float64 `yaml:"rsi_strong_overbought"`
	} `yaml:"thresholds"`

	Risk struct {
		RiskPct       float64 `yaml:"risk_pct"`
		MaxRiskPct    float64 `yaml:"max_risk_pct"`
		StopLossPct   float64 `yaml:"stop_loss_pct"`
		TakeProfitPct float64 `yaml:"take_profit_pct"`
		MinOrderSize  float64 `yaml:"min_order_size"`
	} `yaml:"risk"`

	Paper struct {
		StartingBalance float64 `yaml:"starting_balance"`
	} `yaml:"paper"`

	Narrative struct {
		Enabled        bool     `yaml:"enabled"`
		TimeoutSeconds int      `yaml:"timeout_seconds"`
		Models         []string `yaml:"models"`
	} `yaml:"narrative"`
}

// hardRiskCeiling is the absolute upper bound on per-trade risk. Config
// may set anything at or below it; anything above is rejected at load.
const hardRiskCeiling = 0.05

func (c *Config) Validate() error {
	if c.Mode != "PAPER" && c.Mode != "LIVE" {
		return fmt.Errorf("invalid mode '%s': must be 'PAPER' or 'LIVE'", c.Mode)
	}
	if len(c.Symbols) == 0 {
		return errors.New("symbols cannot be empty")
	}
	if len(c.Accounts) == 0 {
		return errors.New("accounts cannot be empty")
	}
	for _, a := range c.Accounts {
		if a.ID == "" {
			return errors.New("account id cannot be empty")
		}
	}
	if c.Risk.RiskPct <= 0 || c.Risk.RiskPct > hardRiskCeiling {
		return fmt.Errorf("risk.risk_pct must be in (0, %.2f], got %.4f", hardRiskCeiling, c.Risk.RiskPct)
	}
	if c.Risk.MaxRiskPct < c.Risk.RiskPct || c.Risk.MaxRiskPct > hardRiskCeiling {
		return fmt.Errorf("risk.max_risk_pct must be in [risk_pct, %.2f], got %.4f", hardRiskCeiling, c.Risk.MaxRiskPct)
	}
	if c.Risk.StopLossPct <= 0 || c.Risk.TakeProfitPct <= 0 {
		return errors.New("risk.stop_loss_pct and risk.take_profit_pct must be positive")
	}
	if c.Risk.MinOrderSize < 0 {
		return errors.New("risk.min_order_size cannot be negative")
	}
	t := c.Thresholds
	if !(t.RSIStrongOversold < t.RSIOversold && t.RSIOversold < t.RSIOverbought && t.RSIOverbought < t.RSIStrongOverbought) {
		return fmt.Errorf("rsi thresholds must satisfy strong_oversold < oversold < overbought < strong_overbought, got %v", t)
	}
	i := c.Indicators
	if i.RSIPeriod <= 0 || i.SMAShort <= 0 || i.SMALong <= 0 || i.EMAFast <= 0 || i.EMASlow <= 0 || i.MACDSignal <= 0 {
		return errors.New("indicator periods must be positive")
	}
	if i.SMAShort >= i.SMALong {
		return fmt.Errorf("indicators.sma_short (%d) must be below sma_long (%d)", i.SMAShort, i.SMALong)
	}
	if i.EMAFast >= i.EMASlow {
		return fmt.Errorf("indicators.ema_fast (%d) must be below ema_slow (%d)", i.EMAFast, i.EMASlow)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Timeframe == "" {
		c.Timeframe = "5m"
	}
	if c.PollSeconds == 0 {
		c.PollSeconds = 60
	}
	if c.CandleLimit == 0 {
		c.CandleLimit = 100
	}
	if c.QuoteCurrency == "" {
		c.QuoteCurrency = "USDT"
	}
	if c.CycleTimeoutSeconds == 0 {
		c.CycleTimeoutSeconds = 30
	}
	if c.Indicators.RSIPeriod == 0 {
		c.Indicators.RSIPeriod = 14
	}
	if c.Indicators.SMAShort == 0 {
		c.Indicators.SMAShort = 10
	}
	if c.Indicators.SMALong == 0 {
		c.Indicators.SMALong = 30
	}
	if c.Indicators.EMAFast == 0 {
		c.Indicators.EMAFast = 12
	}
	if c.Indicators.EMASlow == 0 {
		c.Indicators.EMASlow = 26
	}
	if c.Indicators.MACDSignal == 0 {
		c.Indicators.MACDSignal = 9
	}
	if c.Thresholds.RSIOversold == 0 {
		c.Thresholds.RSIOversold = 30
	}
	if c.Thresholds.RSIOverbought == 0 {
		c.Thresholds.RSIOverbought = 70
	}
	if c.Thresholds.RSIStrongOversold == 0 {
		c.Thresholds.RSIStrongOversold = 20
	}
	if c.Thresholds.RSIStrongOverbought == 0 {
		c.Thresholds.RSIStrongOverbought = 80
	}
	if c.Risk.RiskPct == 0 {
		c.Risk.RiskPct = 0.01
	}
	if c.Risk.MaxRiskPct == 0 {
		c.Risk.MaxRiskPct = hardRiskCeiling
	}
	if c.Risk.StopLossPct == 0 {
		c.Risk.StopLossPct = 0.02
	}
	if c.Risk.TakeProfitPct == 0 {
		c.Risk.TakeProfitPct = 0.04
	}
	if c.Risk.MinOrderSize == 0 {
		c.Risk.MinOrderSize = 0.001
	}
	if c.Paper.StartingBalance == 0 {
		c.Paper.StartingBalance = 10000
	}
	if c.Narrative.TimeoutSeconds == 0 {
		c.Narrative.TimeoutSeconds = 10
	}
	if len(c.Narrative.Models) == 0 {
		c.Narrative.Models = []string{"gemini-1.5-flash", "gemini-pro", "gemini-1.5-pro-latest"}
	}
}

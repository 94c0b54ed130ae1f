package envconfig

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type paystackEnv struct {
	SecretKey       string        `env:"PAYSTACK_SECRET_KEY,required,notEmpty"`
	BaseURL         string        `env:"PAYSTACK_BASE_URL" envDefault:"https://api.paystack.co"`
	CallbackBaseURL string        `env:"PAYSTACK_CALLBACK_URL,required"`
	Timeout         time.Duration `env:"PAYSTACK_TIMEOUT" envDefault:"10s"`
}

type paystack struct {
	raw paystackEnv
}

func NewPaystackConfig() (*paystack, error) {
	var raw paystackEnv
	if err := env.Parse(&raw); err != nil {
		return nil, err
	}
	raw.BaseURL = strings.TrimRight(raw.BaseURL, "/")
	raw.CallbackBaseURL = strings.TrimRight(raw.CallbackBaseURL, "/")
	return &paystack{raw: raw}, nil
}

func (cfg *paystack) SecretKey() string       { return cfg.raw.SecretKey }
func (cfg *paystack) BaseURL() string         { return cfg.raw.BaseURL }
func (cfg *paystack) CallbackBaseURL() string { return cfg.raw.CallbackBaseURL }
func (cfg *paystack) Timeout() time.Duration  { return cfg.raw.Timeout }

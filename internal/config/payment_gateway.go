package config

const (
	PaymentProviderMock   = "mock"
	PaymentProviderStripe = "stripe"
)

type PaymentConfig struct {
	DefaultProvider string        `yaml:"default_provider"`
	Stripe          *StripeConfig `yaml:"stripe"`
	Currency        string        `yaml:"currency"`

	// PlatformFeePercent is withheld from each payment when it is settled
	// to the host.
	PlatformFeePercent float64 `yaml:"platform_fee_percent"`
}

type StripeConfig struct {
	SecretKey     string `yaml:"secret_key"`
	// PaymentMethod is confirmed server side; pm_card_visa in test mode.
	PaymentMethod string `yaml:"payment_method"`
}

func loadPaymentConfig() *PaymentConfig {
	return &PaymentConfig{
		DefaultProvider: getEnv("PAYMENT_DEFAULT_PROVIDER", PaymentProviderMock),
		Stripe: &StripeConfig{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			PaymentMethod: getEnv("STRIPE_PAYMENT_METHOD", "pm_card_visa"),
		},
		Currency:           getEnv("PAYMENT_CURRENCY", "KRW"),
		PlatformFeePercent: getEnvAsFloat("PAYMENT_PLATFORM_FEE_PERCENT", 10),
	}
}

package payments

import (
	"fmt"

	"zignasa/internal/config"
)

func NewGateway(cfg config.Config) (Gateway, error) {
	switch cfg.Payments.Provider {
	case "", "links":
		return NewLinks(cfg.Payments.KeySecret), nil
	case "stub":
		return NewStub(cfg.Payments.KeySecret, cfg.Server.PublicURL), nil
	default:
		return nil, fmt.Errorf("unknown payment provider: %s", cfg.Payments.Provider)
	}
}

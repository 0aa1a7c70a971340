package app

import (
	"os"

	"order-service/internal/config"
	"order-service/internal/logx"
)

func newLogger(cfg *config.Config) (logx.Logger, error) {
	if cfg.Log.Backend == config.LogZap {
		return logx.NewZapProduction(cfg.Log.Level)
	}
	return logx.NewJSON(os.Stdout, cfg.Log.Level), nil
}

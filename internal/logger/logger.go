package logger

import (
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/config"
)

var Module = fx.Options(
	fx.Provide(NewLogger),
	fx.WithLogger(func(l *zap.SugaredLogger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: l.Desugar()}
	}),
)

// NewLogger builds a production logger when ENV=production and a development one otherwise.
func NewLogger(lc fx.Lifecycle, cfg *config.Config) (*zap.SugaredLogger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if cfg.Env == config.EnvProduction {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, errors.Wrap(err, "build zap logger")
	}

	s := l.Sugar()
	lc.Append(fx.StopHook(func() {
		// stderr/stdout sync fails on some platforms, nothing to do about it
		_ = s.Sync()
	}))
	return s, nil
}

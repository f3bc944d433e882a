package serve

import (
	"context"

	"go.uber.org/zap"

	"tableflip.dev/tradelog/pkg/server"
	"tableflip.dev/tradelog/pkg/store"
)

type Serve struct {
	Listen string
	Config store.Config
	Logger *zap.Logger
}

func (n *Serve) Do(ctx context.Context) error {
	if n.Logger == nil {
		n.Logger = zap.NewNop()
	}
	p, err := store.Load(n.Config, n.Logger)
	if err != nil {
		return err
	}
	n.Logger.Info("journal store ready", zap.String("path", n.Config.BasePath()))
	return server.New(p, n.Logger).Run(ctx, n.Listen)
}

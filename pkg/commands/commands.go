package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/tradelog/pkg/commands/options"
	"tableflip.dev/tradelog/pkg/config"
	"tableflip.dev/tradelog/pkg/controller"
	"tableflip.dev/tradelog/pkg/logging"
	"tableflip.dev/tradelog/pkg/remote"
)

var (
	oo = &base.OutputOptions{}
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "tradelog",
		Short: base.Wrap80("Options trading journal on the command line."),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addList(topLevel)
	addTabs(topLevel)
	addShow(topLevel)
	addAdd(topLevel)
	addDelete(topLevel)
	addUI(topLevel)
	addServe(topLevel)
	addInfo(topLevel)
	addVersion(topLevel)
}

// env is what a client command needs once flags are parsed.
type env struct {
	cfg    *config.Config
	log    *zap.Logger
	client *remote.Client
}

func loadEnv(co *options.ClientOptions) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	co.Apply(cfg)
	log, err := logging.New(cfg.Log.Level, cfg.Log.Encoding, cfg.Log.Output)
	if err != nil {
		return nil, err
	}
	return &env{
		cfg:    cfg,
		log:    log,
		client: &remote.Client{BaseURL: cfg.Server, Timeout: cfg.Timeout},
	}, nil
}

func (e *env) controller(opts ...controller.Option) *controller.Controller {
	return controller.New(e.client, append([]controller.Option{controller.WithLogger(e.log)}, opts...)...)
}

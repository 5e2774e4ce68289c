package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/grpc"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/spf13/cobra"
	"google.golang.org/grpc/health"

	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/config"
	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/logger"
	"github.com/iWorld-y/clarity_radar/app/clarity_radar/pkg/model"
)

// go build -ldflags "-X main.Version=x.y.z"
var (
	// Name 是服务的名称
	Name string = "clarity_radar"
	// Version 是服务的版本号
	Version string
	// flagconf 是配置文件的路径命令行参数
	flagconf string

	id, _ = os.Hostname()
)

func main() {
	root := &cobra.Command{
		Use:          "clarity_radar",
		Short:        "AI visibility analysis service",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&flagconf, "conf", "c", "app/clarity_radar/configs/config.yaml", "config path, eg: --conf config.yaml")
	root.AddCommand(newServeCmd(), newAnalyzeCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, log.Logger, error) {
	cfg, err := config.LoadConfig(flagconf)
	if err != nil {
		return nil, nil, fmt.Errorf("加载配置失败: %w", err)
	}
	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		return nil, nil, fmt.Errorf("初始化日志失败: %w", err)
	}

	// 初始化日志记录器，包含时间戳、调用者信息、服务ID等上下文
	kl := log.With(log.NewStdLogger(os.Stdout),
		"ts", log.DefaultTimestamp,
		"caller", log.DefaultCaller,
		"service.id", id,
		"service.name", Name,
		"service.version", Version,
	)
	return cfg, kl, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and gRPC servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, kl, err := loadConfig()
			if err != nil {
				return err
			}

			app, cleanup, err := initApp(cfg, kl)
			if err != nil {
				return err
			}
			defer cleanup()

			return app.Run()
		},
	}
}

func newAnalyzeCmd() *cobra.Command {
	var forceRefresh bool
	cmd := &cobra.Command{
		Use:   "analyze <subject>",
		Short: "Analyze a single subject and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, kl, err := loadConfig()
			if err != nil {
				return err
			}

			eng, cleanup, err := initEngine(cfg, kl)
			if err != nil {
				return err
			}
			defer cleanup()

			resp, err := eng.Analyze(context.Background(), model.AnalysisRequest{
				Subject:       args[0],
				SourceChannel: model.ChannelReport,
				ForceRefresh:  forceRefresh,
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}
	cmd.Flags().BoolVar(&forceRefresh, "force-refresh", false, "skip caches and force a real analysis")
	return cmd
}

func newApp(kl log.Logger, hs *http.Server, gs *grpc.Server, hsrv *health.Server) *kratos.App {
	return kratos.New(
		kratos.ID(id),
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Metadata(map[string]string{}),
		kratos.Logger(kl),
		kratos.Server(hs, gs),
		kratos.BeforeStop(func(context.Context) error {
			hsrv.Shutdown()
			return nil
		}),
	)
}

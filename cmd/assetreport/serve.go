package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"assetreport/internal/derived"
	"assetreport/internal/server"
	"assetreport/internal/util"
)

var (
	servePort int
	serveDev  bool
	serveOpen bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 HTTP 服务",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.Close()

		// 命令行参数覆盖配置（config.toml / 环境变量显式配置的端口优先）
		if servePort > 0 && !a.info.PortSpecified {
			a.cfg.Server.Port = servePort
		}
		if serveDev {
			a.cfg.Server.DevMode = true
		}

		var scheduler *derived.Scheduler
		if a.cfg.Sync.Enabled && a.cfg.Sync.Schedule != "" {
			scheduler, err = derived.NewScheduler(a.rebuilder, a.cfg.Sync.Schedule)
			if err != nil {
				return err
			}
			scheduler.Start()
		}

		srv := server.NewServer(a.cfg, a.dataDir, a.store, a.rebuilder, a.logger)
		addr := fmt.Sprintf(":%d", a.cfg.Server.Port)

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Run(addr)
		}()

		url := util.LocalURL(a.cfg.Server.Port)
		fmt.Printf("服务已启动: %s\n", url)
		if serveOpen {
			go func() {
				time.Sleep(500 * time.Millisecond)
				if err := util.OpenBrowser(url); err != nil {
					fmt.Printf("无法自动打开浏览器，请手动访问: %s\n", url)
				}
			}()
		}
		fmt.Println("按 Ctrl+C 停止服务...")

		// 等待信号
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("服务启动失败: %w", err)
			}
		}

		fmt.Println("\n正在关闭服务...")
		if scheduler != nil {
			<-scheduler.Stop().Done()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "服务端口 (config.toml 优先；仅当未显式配置 port 时生效)")
	serveCmd.Flags().BoolVar(&serveDev, "dev", false, "开发模式")
	serveCmd.Flags().BoolVar(&serveOpen, "open", false, "启动后自动打开浏览器")
}

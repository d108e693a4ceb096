package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"assetreport/internal/config"
	"assetreport/internal/derived"
	"assetreport/internal/logging"
	"assetreport/internal/store"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "assetreport",
	Short: "数据资产入表报表服务",
	Long: `
==========================================
  AssetReport - 数据资产入表报表服务
==========================================
表格追加上传、去重标记、派生报表重建。`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "配置文件路径 (默认为可执行文件同目录下的 config.toml)")

	rootCmd.AddCommand(serveCmd, syncCmd, columnsCmd, ingestCmd, userCmd)
}

// app 子命令共用的运行环境
type app struct {
	cfg       *config.AppConfig
	info      config.LoadConfigInfo
	dataDir   string
	logger    *logrus.Logger
	store     *store.Store
	rebuilder *derived.Rebuilder
}

// bootstrap 加载配置、建立数据目录、打开数据库
func bootstrap() (*app, error) {
	cfg, info, err := config.LoadConfigWithInfo(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}

	logger := logging.New(cfg.Log)

	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("创建数据目录失败: %w", err)
	}

	st, err := store.New(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"config":  info.Path,
		"found":   info.FileFound,
		"dataDir": dataDir,
		"driver":  st.Dialect().Name(),
	}).Debug("configuration loaded")

	return &app{
		cfg:       cfg,
		info:      info,
		dataDir:   dataDir,
		logger:    logger,
		store:     st,
		rebuilder: derived.NewRebuilder(st, cfg.Sync, logger),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.WithError(err).Warn("failed to close database")
	}
}

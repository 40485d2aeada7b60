package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"quoteboard/pkg/config"
	"quoteboard/pkg/logger"
)

var (
	configPath = flag.String("config", "", "配置文件路径 (例如 ./config/quoteboard.yaml)")
	mode       = flag.String("mode", "", "看板模式 (web, terminal)")
	addr       = flag.String("addr", "", "Web 监听地址，如 :8501")
	logLevel   = flag.String("log-level", "", "日志级别 (debug, info, warn, error)")
)

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	loggerConfig := logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		Filename:   cfg.Logger.Filename,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
	}
	if err := logger.Init(loggerConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	logger.Info("QuoteBoard starting...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := newApp(ctx, cfg, os.Stdout)
	if err != nil {
		logger.Errorf("Failed to build application: %v", err)
		os.Exit(1)
	}

	if err := app.Start(); err != nil {
		logger.Errorf("Failed to start application: %v", err)
		app.Close(ctx)
		os.Exit(1)
	}

	// 等待退出信号
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	<-c

	logger.Info("收到退出信号，正在关闭...")
	app.Close(ctx)
	logger.Info("已退出")
}

// loadConfig 读取配置并叠加命令行参数
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	if *mode != "" {
		cfg.SetMode(*mode)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *logLevel != "" {
		cfg.SetLogLevel(*logLevel)
	}
	return cfg, cfg.Validate()
}

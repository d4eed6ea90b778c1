package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"simplelink/internal/config"
	"simplelink/internal/repository"
	"simplelink/internal/service"
	"simplelink/internal/shortcode"
	"simplelink/pkg/database"
	auth "simplelink/pkg/jwt"
	"simplelink/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type app struct {
	cfg   *config.Config
	store *repository.Store
	log   *zap.SugaredLogger
}

func main() {
	var configPath string
	var a app

	root := &cobra.Command{
		Use:           "simplelink-cli",
		Short:         "simplelink 管理工具",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(configPath)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "配置文件路径")

	root.AddCommand(exportCmd(&a), statsCmd(&a), reconcileCmd(&a), setupTokenCmd(&a))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "错误:", err)
		os.Exit(1)
	}
}

func (a *app) init(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	// 只输出警告以上日志，避免干扰命令结果
	logger.InitLogger(logger.Options{Level: "warn", Path: cfg.Log.Path})

	db, err := database.Open(database.Options{
		Driver:   cfg.Database.Driver,
		DSN:      cfg.Database.DSN,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Name:     cfg.Database.Name,
	})
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	a.cfg = cfg
	a.store = repository.NewStore(db)
	a.log = logger.Sugar
	return nil
}

func exportCmd(a *app) *cobra.Command {
	var userID uint
	cmd := &cobra.Command{
		Use:   "export",
		Short: "以 JSON 导出短链接",
		RunE: func(cmd *cobra.Command, args []string) error {
			links := service.NewLinkService(a.store, nil, shortcode.NewGenerator(a.log), a.log)
			result, err := links.Export(cmd.Context(), userID)
			if err != nil {
				return err
			}
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(result)
		},
	}
	cmd.Flags().UintVar(&userID, "user-id", 0, "只导出该用户的链接")
	return cmd
}

func statsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <short_code>",
		Short: "查看短链接的点击统计",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			link, err := a.store.Links().FindByShortCode(ctx, args[0])
			if err != nil {
				return fmt.Errorf("短码 %s: %w", args[0], err)
			}

			stats := service.NewStatsService(a.store, a.cfg.Location(), a.log)
			days, err := stats.ClicksByDay(ctx, link.UserID, link.ID)
			if err != nil {
				return err
			}
			sources, err := stats.ClicksBySource(ctx, link.UserID, link.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s -> %s (总点击 %d)\n", link.ShortCode, link.OriginalURL, link.Clicks)
			fmt.Fprintln(out, "按天:")
			for _, d := range days {
				fmt.Fprintf(out, "  %s  %d\n", d.Date, d.Clicks)
			}
			fmt.Fprintln(out, "按来源:")
			for _, s := range sources {
				fmt.Fprintf(out, "  %-20s %d\n", s.Source, s.Count)
			}
			return nil
		},
	}
}

func reconcileCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "按点击记录重算链接点击数",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()
			fixed, err := service.NewStatsService(a.store, a.cfg.Location(), a.log).Reconcile(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已修正 %d 条链接\n", fixed)
			return nil
		},
	}
}

func setupTokenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "setup-token",
		Short: "尚无用户时生成管理员引导令牌",
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens := auth.NewManager(a.cfg.Auth.Secret, a.cfg.Auth.Issuer, a.cfg.Auth.ExpirationHours)
			authService := service.NewAuthService(a.store, tokens, service.AuthOptions{
				RequireSetupToken: a.cfg.Auth.RequireSetupToken,
				SetupTokenFile:    a.cfg.Auth.SetupTokenFile,
			}, a.log)

			token, err := authService.EnsureSetupToken(cmd.Context())
			if err != nil {
				return err
			}
			if token == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "已存在用户，无需引导令牌")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}

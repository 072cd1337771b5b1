package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/hrygo/facesense/internal/profile"
	"github.com/hrygo/facesense/server"
	"github.com/hrygo/facesense/store"
	"github.com/hrygo/facesense/store/db"
)

const version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "facesense",
	Short: "Identity matching and recall practice engine",
	RunE: func(_ *cobra.Command, _ []string) error {
		instanceProfile := &profile.Profile{
			Mode:            viper.GetString("mode"),
			Addr:            viper.GetString("addr"),
			Port:            viper.GetInt("port"),
			Data:            viper.GetString("data"),
			Driver:          viper.GetString("driver"),
			DSN:             viper.GetString("dsn"),
			Secret:          viper.GetString("secret"),
			MatchThreshold:  viper.GetFloat64("match-threshold"),
			MatchHighCutoff: viper.GetFloat64("match-high-cutoff"),
			MatchBoostDelta: viper.GetFloat64("match-boost-delta"),
			Version:         version,
		}
		if err := instanceProfile.Validate(); err != nil {
			return err
		}

		level := slog.LevelInfo
		if instanceProfile.IsDev() {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		dbDriver, err := db.NewDBDriver(instanceProfile)
		if err != nil {
			return fmt.Errorf("failed to create db driver: %w", err)
		}
		storeInstance := store.New(dbDriver, instanceProfile)
		if err := storeInstance.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}

		s, err := server.NewServer(ctx, instanceProfile, storeInstance, logger)
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		group, groupCtx := errgroup.WithContext(ctx)
		group.Go(func() error {
			return s.Start(groupCtx)
		})
		group.Go(func() error {
			<-groupCtx.Done()
			s.Shutdown(context.Background())
			return nil
		})
		if err := group.Wait(); err != nil && groupCtx.Err() == nil {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("mode", "demo", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 8231, "port of server")
	rootCmd.PersistentFlags().String("data", ".", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", "database driver")
	rootCmd.PersistentFlags().String("dsn", "", "database source name (aka. DSN)")
	rootCmd.PersistentFlags().String("secret", "", "access token signing secret; empty disables auth")
	rootCmd.PersistentFlags().Float64("match-threshold", 0, "minimum similarity to report a match")
	rootCmd.PersistentFlags().Float64("match-high-cutoff", 0, "lower bound of the high-confidence tier")
	rootCmd.PersistentFlags().Float64("match-boost-delta", 0, "additive boost for recently seen persons")

	for _, flag := range []string{"mode", "addr", "port", "data", "driver", "dsn", "secret", "match-threshold", "match-high-cutoff", "match-boost-delta"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}
	viper.SetEnvPrefix("facesense")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

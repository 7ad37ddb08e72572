package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/vfg2006/churn-analytics/infrastructure/csvsource"
	"github.com/vfg2006/churn-analytics/infrastructure/database"
	"github.com/vfg2006/churn-analytics/infrastructure/repository"
	"github.com/vfg2006/churn-analytics/internal/config"
	"github.com/vfg2006/churn-analytics/internal/usecases/analyzing"
	"github.com/vfg2006/churn-analytics/internal/usecases/reporting"
	"github.com/vfg2006/churn-analytics/pkg/log"
)

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Error("Falha na análise de churn")
		os.Exit(1)
	}
}

func run() error {
	// Inicializa configuração de logs
	if err := log.Configure("info", "text", os.Stderr); err != nil {
		return err
	}

	v := viper.New()
	flags := pflag.NewFlagSet("churn", pflag.ContinueOnError)
	if err := config.BindFlags(v, flags); err != nil {
		return err
	}
	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}

	cfg, err := config.NewConfig(v, flags, time.Now())
	if err != nil {
		return err
	}

	// Define o nível e o formato de log com base na configuração
	if err := log.Configure(cfg.App.LogLevel, cfg.App.LogFormat, os.Stderr); err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	source := csvsource.New(cfg.Pipeline.InputPath)
	analyzer := analyzing.NewService(cfg, source)

	if cfg.Database.Enabled {
		conn, err := dbconn(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer conn.Close()

		analyzer.WithArchive(repository.NewAnalysisRunRepository(conn))
	}

	result, err := analyzer.Run(ctx)
	if err != nil {
		return err
	}

	return reporting.Print(os.Stdout, result.Report)
}

// dbconn cria a conexão com o banco de arquivamento
func dbconn(ctx context.Context, dbConfig config.Database) (*database.Connection, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	conn, err := database.NewConnection(connectCtx, dbConfig)
	if err != nil {
		return nil, err
	}

	logrus.WithField("driver", conn.Driver()).Info("Conexão com o banco de dados estabelecida com sucesso")
	return conn, nil
}

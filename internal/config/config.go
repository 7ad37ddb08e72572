package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/vfg2006/churn-analytics/pkg/utils"
)

type Config struct {
	App      App      `mapstructure:",squash"`
	Pipeline Pipeline `mapstructure:",squash"`
	Export   Export   `mapstructure:",squash"`
	Database Database `mapstructure:",squash"`
}

type App struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

type Pipeline struct {
	InputPath         string    `mapstructure:"input_path"`
	ProcessingDateRaw string    `mapstructure:"processing_date"`
	LatestVersionOnly bool      `mapstructure:"latest_version_only"`
	Workers           int       `mapstructure:"workers"`
	TopN              int       `mapstructure:"top_n"`
	ShowProgress      bool      `mapstructure:"show_progress"`
	ProcessingDate    time.Time `mapstructure:"-"`
}

type Export struct {
	OutputDir string `mapstructure:"output_dir"`
	Enriched  bool   `mapstructure:"export_enriched"`
	Compress  bool   `mapstructure:"export_compress"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Enabled  bool   `mapstructure:"database_enabled"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
}

// Drivers aceitos para o arquivamento das execuções
var supportedDrivers = map[string]bool{
	"postgres": true,
	"pgx":      true,
	"mysql":    true,
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")

	v.SetDefault("INPUT_PATH", "")
	v.SetDefault("PROCESSING_DATE", "") // Vazio = data da execução
	v.SetDefault("LATEST_VERSION_ONLY", false)
	v.SetDefault("WORKERS", 4)
	v.SetDefault("TOP_N", 20)
	v.SetDefault("SHOW_PROGRESS", true)

	v.SetDefault("OUTPUT_DIR", "output")
	v.SetDefault("EXPORT_ENRICHED", true)
	v.SetDefault("EXPORT_COMPRESS", false)

	v.SetDefault("DATABASE_ENABLED", false)
	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("DATABASE_URL", "localhost:5432/churn")
	v.SetDefault("DATABASE_USER", "postgres")
	v.SetDefault("DATABASE_PASSWORD", "root")
}

// BindFlags registra as flags da linha de comando e as associa às chaves de configuração
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	flags.String("input", "", "Caminho do CSV de assinaturas")
	flags.String("output", "", "Diretório de saída dos relatórios")
	flags.String("as-of", "", "Data de processamento (yyyy-mm-dd); padrão = hoje")
	flags.Bool("latest-only", false, "Mantém apenas a maior versão de cada assinatura")
	flags.Int("workers", 0, "Número de goroutines do pipeline")
	flags.Int("top", 0, "Quantidade de assinantes na lista de retenção")
	flags.Bool("db", false, "Arquiva a execução no banco de dados")
	flags.Bool("quiet", false, "Desativa a barra de progresso")

	bindings := map[string]string{
		"INPUT_PATH":          "input",
		"OUTPUT_DIR":          "output",
		"PROCESSING_DATE":     "as-of",
		"LATEST_VERSION_ONLY": "latest-only",
		"WORKERS":             "workers",
		"TOP_N":               "top",
		"DATABASE_ENABLED":    "db",
	}
	for key, name := range bindings {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("erro ao associar flag %s: %w", name, err)
		}
	}
	return nil
}

// NewConfig carrega a configuração de .env, variáveis de ambiente e flags já associadas em v.
// now é usado como data de processamento quando PROCESSING_DATE não é informada.
func NewConfig(v *viper.Viper, flags *pflag.FlagSet, now time.Time) (*Config, error) {
	loadEnvFile()

	config := &Config{}

	SetDefaults(v)

	v.SetConfigType("env")
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		logrus.Debug("Usando variáveis de ambiente (viper não conseguiu ler .env): ", err)
	}

	err := v.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	// Flags sem valor padrão explícito não devem sobrescrever o ambiente
	if flags != nil {
		if quiet, err := flags.GetBool("quiet"); err == nil && quiet {
			config.Pipeline.ShowProgress = false
		}
	}

	if err := config.resolve(now); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) resolve(now time.Time) error {
	c.Pipeline.InputPath = strings.TrimSpace(c.Pipeline.InputPath)
	if c.Pipeline.InputPath == "" {
		return errors.New("INPUT_PATH (--input) é obrigatório")
	}

	processingDate, err := utils.ParseDate(strings.TrimSpace(c.Pipeline.ProcessingDateRaw))
	if err != nil {
		return fmt.Errorf("PROCESSING_DATE inválida: %w", err)
	}
	if processingDate == nil {
		today := utils.DateOnly(now)
		processingDate = &today
	}
	c.Pipeline.ProcessingDate = *processingDate

	if c.Pipeline.Workers <= 0 {
		c.Pipeline.Workers = 1
	}
	if c.Pipeline.TopN < 0 {
		c.Pipeline.TopN = 0
	}

	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	if c.Database.Enabled && !supportedDrivers[c.Database.Driver] {
		return fmt.Errorf("DATABASE_DRIVER não suportado: %s", c.Database.Driver)
	}

	scheme := c.Database.Driver
	if scheme == "pgx" {
		scheme = "postgres"
	}
	c.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		scheme,
		c.Database.User,
		c.Database.Password,
		c.Database.URL,
	)

	return nil
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual: ", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),               // Diretório atual
		filepath.Join(filepath.Dir(cwd), ".env"), // Diretório pai
	}

	for _, location := range locations {
		if err := godotenv.Load(location); err == nil {
			logrus.Debug("Arquivo .env carregado de: ", location)
			return
		}
	}

	logrus.Debug("Nenhum arquivo .env encontrado; usando apenas variáveis de ambiente")
}

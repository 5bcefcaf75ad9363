package config

import (
	"fmt"
	"log"
	"math"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"inmobiliaria-analyzer/models"
)

// MontevideoNeighborhoods is the canonical list of neighborhoods the scraper
// recognizes; anything else is kept as free text.
var MontevideoNeighborhoods = []string{
	"Pocitos", "Punta Carretas", "Cordón", "Centro", "Ciudad Vieja",
	"Parque Rodó", "Buceo", "Malvín", "Carrasco", "Tres Cruces",
	"La Blanqueada", "Villa Biarritz", "Punta Gorda", "Palermo",
	"Barrio Sur", "Aguada", "Reducto", "Brazo Oriental", "Villa Dolores",
}

// Bounds are the validity limits applied by the cleaner. Listings outside
// them are treated as data errors (typos, lots, commercial units) and dropped.
type Bounds struct {
	MinPrice float64
	MaxPrice float64
	MinArea  float64
	MaxArea  float64
}

// Weights is one row of the risk-tolerance weight table. The three weights
// must sum to 1 so investment scores stay within [0,1].
type Weights struct {
	ROI        float64
	PricePerM2 float64
	Size       float64
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	BaseURL        string
	SaleURL        string
	RentURL        string
	UserAgent      string
	ChromeBin      string
	PagesPerOp     int
	MaxConcurrency int
	RateLimitMs    int
	MaxRetries     int

	SQLitePath       string
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	CSVOutputPath string
	ModelPath     string

	Bounds      Bounds
	RiskWeights map[models.RiskTolerance]Weights
	TopN        int
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	base := getEnv("BASE_URL", "https://www.infocasas.com.uy")

	return &Config{
		BaseURL: base,
		SaleURL: base + "/venta/apartamento/montevideo",
		RentURL: base + "/alquiler/apartamento/montevideo",
		UserAgent: getEnv("USER_AGENT", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		ChromeBin:      getEnv("CHROME_BIN", ""),
		PagesPerOp:     getEnvInt("PAGES_TO_SCRAPE", 20),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 3),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 2000),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),

		SQLitePath:       getEnv("SQLITE_PATH", "./data/inmobiliaria.db"),
		PostgresHost:     getEnv("POSTGRES_HOST", ""),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "inmobiliaria"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", ""),
		PostgresDB:       getEnv("POSTGRES_DB", "inmobiliaria_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		CSVOutputPath: getEnv("CSV_OUTPUT_PATH", "./data/processed/properties_clean.csv"),
		ModelPath:     getEnv("MODEL_PATH", "./data/models/investment_model.json"),

		Bounds: Bounds{
			MinPrice: getEnvFloat("MIN_PRICE", 50000),
			MaxPrice: getEnvFloat("MAX_PRICE", 500000),
			MinArea:  getEnvFloat("MIN_AREA", 30),
			MaxArea:  getEnvFloat("MAX_AREA", 200),
		},
		RiskWeights: DefaultRiskWeights(),
		TopN:        getEnvInt("TOP_N", 10),
	}
}

// DefaultRiskWeights returns the standard weight table: low risk favors cheap
// price per m² in consolidated neighborhoods, high risk chases yield.
func DefaultRiskWeights() map[models.RiskTolerance]Weights {
	return map[models.RiskTolerance]Weights{
		models.RiskLow:    {ROI: 0.3, PricePerM2: 0.4, Size: 0.3},
		models.RiskMedium: {ROI: 0.4, PricePerM2: 0.3, Size: 0.3},
		models.RiskHigh:   {ROI: 0.6, PricePerM2: 0.2, Size: 0.2},
	}
}

// UsePostgres reports whether the Postgres store should be used instead of
// the default SQLite file.
func (c *Config) UsePostgres() bool {
	return c.PostgresHost != ""
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// Validate checks the filtering bounds and the weight table, returning a
// descriptive error naming the first violated precondition.
func (c *Config) Validate() error {
	if c.Bounds.MinPrice < 0 || c.Bounds.MinPrice > c.Bounds.MaxPrice {
		return fmt.Errorf("invalid price bounds: MIN_PRICE (%.0f) must be non-negative and <= MAX_PRICE (%.0f)",
			c.Bounds.MinPrice, c.Bounds.MaxPrice)
	}
	if c.Bounds.MinArea <= 0 || c.Bounds.MinArea > c.Bounds.MaxArea {
		return fmt.Errorf("invalid area bounds: MIN_AREA (%.0f) must be positive and <= MAX_AREA (%.0f)",
			c.Bounds.MinArea, c.Bounds.MaxArea)
	}
	if c.TopN <= 0 {
		return fmt.Errorf("invalid TOP_N: %d (must be positive)", c.TopN)
	}
	for _, tol := range []models.RiskTolerance{models.RiskLow, models.RiskMedium, models.RiskHigh} {
		w, ok := c.RiskWeights[tol]
		if !ok {
			return fmt.Errorf("risk weight table is missing tolerance %q", tol)
		}
		sum := w.ROI + w.PricePerM2 + w.Size
		if math.Abs(sum-1.0) > 1e-9 {
			return fmt.Errorf("risk weights for %q sum to %.6f, must sum to 1.0", tol, sum)
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}

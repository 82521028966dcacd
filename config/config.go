package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"p9e.in/corecut/pkg/logger"
)

var DB *gorm.DB

// Settings holds everything the server reads from the environment.
type Settings struct {
	Port      string `envconfig:"PORT" default:"8080"`
	DBDSN     string `envconfig:"DB_DSN"`
	JWTSecret string `envconfig:"JWT_SECRET"`

	// Shop geofence for timecard clock-in/out.
	ShopLat     float64 `envconfig:"SHOP_LAT"`
	ShopLng     float64 `envconfig:"SHOP_LNG"`
	ShopRadiusM float64 `envconfig:"SHOP_RADIUS_M" default:"20"`

	// File storage. When UploadBucket is set photos go to GCS,
	// otherwise they land in UploadDir on local disk.
	UploadBucket string `envconfig:"UPLOAD_BUCKET"`
	UploadDir    string `envconfig:"UPLOAD_DIR" default:"./uploads"`
}

var C Settings

// Load reads .env (if present) and parses Settings from the environment.
func Load() error {
	if err := godotenv.Load(); err != nil {
		logger.L.Info().Msg("no .env file found, using system environment variables")
	}
	return envconfig.Process("", &C)
}

// Connect opens the Postgres connection and runs pending migrations.
func Connect() error {
	db, err := gorm.Open(postgres.Open(C.DBDSN), &gorm.Config{})
	if err != nil {
		return err
	}
	DB = db
	return Migrations(DB)
}

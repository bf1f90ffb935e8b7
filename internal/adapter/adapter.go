package adapter

import (
	"fmt"

	"github.com/porter-dev/argocd-deployer/internal/envconf"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New returns a gorm connection to the database described by conf
func New(conf *envconf.DBConf) (*gorm.DB, error) {
	gormConf := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	if conf.SQLLite {
		return gorm.Open(sqlite.Open(conf.SQLLitePath), gormConf)
	}

	dsn := fmt.Sprintf(
		"user=%s password=%s port=%d host=%s dbname=%s sslmode=%s",
		conf.DbUser,
		conf.DbPass,
		conf.DbPort,
		conf.DbHost,
		conf.DbName,
		conf.DbSSLMode,
	)

	return gorm.Open(postgres.Open(dsn), gormConf)
}

package dao

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"forge/internal/common"
	"forge/internal/server/model"
)

var db *gorm.DB

// Init opens the MySQL database described by the environment config and
// migrates the schema.
func Init() error {
	cfg := common.GetConfig()
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	database, err := gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return err
	}
	db = database
	return migrate()
}

// InitSQLite opens a file-backed (or :memory:) database. Used by tests.
func InitSQLite(path string) error {
	database, err := gorm.Open(sqlite.Open(path), &gorm.Config{TranslateError: true})
	if err != nil {
		return err
	}
	db = database
	return migrate()
}

func migrate() error {
	return db.AutoMigrate(
		&model.Pipeline{},
		&model.PipelineExecution{},
		&model.TaskExecution{},
		&model.User{},
	)
}

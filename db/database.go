package db

import (
	"errors"
	"fmt"
	"time"

	"curseforge-mod-updater/logger"

	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/ncruces/go-sqlite3/gormlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// Open connects to the SQLite database at dbPath and migrates the models.
func Open(dbPath string) (*gorm.DB, error) {
	// GORM writes through the application logger instead of stdout.
	newLogger := gormlogger.New(
		zap.NewStdLog(logger.Log.Desugar()),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      false,
			Colorful:                  false,
		},
	)

	conn, err := gorm.Open(gormlite.Open(dbPath), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := conn.AutoMigrate(&Mod{}, &ModVersion{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database schema: %w", err)
	}
	return conn, nil
}

// InitDatabase opens dbPath and installs it as the package-wide DB.
func InitDatabase(dbPath string) error {
	conn, err := Open(dbPath)
	if err != nil {
		return err
	}
	DB = conn
	return nil
}

// FindMod returns the tracked mod with the CurseForge modID, or nil.
func FindMod(conn *gorm.DB, modID int) (*Mod, error) {
	var mod Mod
	err := conn.Where("mod_id = ?", modID).First(&mod).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &mod, nil
}

// TrackedMods returns every tracked mod ordered by name.
func TrackedMods(conn *gorm.DB) ([]Mod, error) {
	var mods []Mod
	if err := conn.Order("name").Find(&mods).Error; err != nil {
		return nil, err
	}
	return mods, nil
}

// History returns the previously installed versions of modID, newest first.
func History(conn *gorm.DB, modID int) ([]ModVersion, error) {
	var versions []ModVersion
	if err := conn.Where("mod_id = ?", modID).Order("created_at desc, id desc").Find(&versions).Error; err != nil {
		return nil, err
	}
	return versions, nil
}

// Untrack removes modID and its history. Files on disk are left alone.
func Untrack(conn *gorm.DB, modID int) error {
	return conn.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("mod_id = ?", modID).Delete(&ModVersion{}).Error; err != nil {
			return err
		}
		res := tx.Unscoped().Where("mod_id = ?", modID).Delete(&Mod{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("mod %d is not tracked", modID)
		}
		return nil
	})
}

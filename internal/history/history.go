package history

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"retro-zip/internal/logger"
)

const (
	// Limit is how many archives the history keeps.
	Limit = 10

	defaultDBName = ".retro_zip_history.db"
	dbPathEnvVar  = "RETROZIP_HISTORY_DB"
)

// Record is one recently opened archive.
type Record struct {
	gorm.Model
	UID      string    `gorm:"uniqueIndex;not null"`
	Path     string    `gorm:"uniqueIndex;not null"`
	OpenedAt time.Time `gorm:"index;not null"`
}

// DefaultPath is ~/.retro_zip_history.db unless RETROZIP_HISTORY_DB is set.
func DefaultPath() string {
	if path := os.Getenv(dbPathEnvVar); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultDBName
	}
	return filepath.Join(home, defaultDBName)
}

type Store struct {
	db     *gorm.DB
	logger logger.Logger
	mu     sync.Mutex
	now    func() time.Time
}

// Open connects to the sqlite file at path and migrates the schema.
func Open(path string, log logger.Logger) (*Store, error) {
	if log == nil {
		log = &logger.NoOpLogger{}
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open history database %s: %w", path, err)
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("migrate history database: %w", err)
	}

	log.Debug("History", "history database ready", map[string]interface{}{
		"path": path,
	})
	return &Store{db: db, logger: log, now: time.Now}, nil
}

// Add moves path to the front of the history and prunes it to Limit rows.
func (s *Store) Add(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var rec Record
		if err := tx.Where("path = ?", path).Limit(1).Find(&rec).Error; err != nil {
			return fmt.Errorf("look up history: %w", err)
		}

		if rec.ID == 0 {
			rec = Record{UID: uuid.NewString(), Path: path, OpenedAt: s.now()}
			if err := tx.Create(&rec).Error; err != nil {
				return fmt.Errorf("record history: %w", err)
			}
		} else if err := tx.Model(&rec).Update("opened_at", s.now()).Error; err != nil {
			return fmt.Errorf("record history: %w", err)
		}

		return s.prune(tx)
	})
}

func (s *Store) prune(tx *gorm.DB) error {
	var all []Record
	if err := tx.Order("opened_at desc, id desc").Find(&all).Error; err != nil {
		return fmt.Errorf("prune history: %w", err)
	}
	if len(all) <= Limit {
		return nil
	}
	stale := all[Limit:]
	if err := tx.Unscoped().Delete(&stale).Error; err != nil {
		return fmt.Errorf("prune history: %w", err)
	}
	return nil
}

// Recent returns up to n paths, newest first.
func (s *Store) Recent(n int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n <= 0 || n > Limit {
		n = Limit
	}
	var records []Record
	if err := s.db.Order("opened_at desc, id desc").Limit(n).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return records, nil
}

// Remove drops path from the history, used when a recent archive has vanished.
func (s *Store) Remove(path string) error {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Unscoped().Where("path = ?", path).Delete(&Record{}).Error
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(&Record{}).Error
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Shutdown satisfies the shutdown manager.
func (s *Store) Shutdown() {
	if err := s.Close(); err != nil {
		s.logger.Error("History", err, nil)
	}
}

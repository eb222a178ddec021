package storage

import (
	"errors"
	"fmt"
	"log"
	"time"

	"filvault/internal/config"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DatabaseStore is the durable backend, selectable between SQLite and MySQL.
type DatabaseStore struct {
	db  *gorm.DB
	cdn *cdnCounter
}

func NewDatabaseStore(dbType config.DatabaseType, dsn string) (*DatabaseStore, error) {
	var dialector gorm.Dialector

	switch dbType {
	case config.DatabaseMySQL:
		dialector = mysql.Open(dsn)
		log.Printf("Connecting to MySQL: %s", maskPassword(dsn))
	case config.DatabaseSQLite:
		dialector = sqlite.Open(dsn)
		log.Printf("Connecting to SQLite: %s", dsn)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := db.AutoMigrate(&File{}, &Deal{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database (%s) connected and migrated successfully", dbType)

	return &DatabaseStore{db: db, cdn: newCdnCounter()}, nil
}

// maskPassword hides the credential part of a DSN for logging.
func maskPassword(dsn string) string {
	if len(dsn) > 20 {
		return dsn[:10] + "***" + dsn[len(dsn)-10:]
	}
	return "***"
}

func (s *DatabaseStore) CreateFile(file *File) error {
	if file.Status == "" {
		file.Status = StatusUploading
	}
	return s.db.Create(file).Error
}

// CreateFileWithDeal writes both records in one transaction so a deal-create
// failure cannot leave an orphaned file behind.
func (s *DatabaseStore) CreateFileWithDeal(file *File, deal *Deal) error {
	if deal == nil {
		return s.CreateFile(file)
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if file.Status == "" {
			file.Status = StatusUploading
		}
		if err := tx.Create(file).Error; err != nil {
			return err
		}
		deal.FileID = file.ID
		if deal.Status == "" {
			deal.Status = StatusPending
		}
		return tx.Create(deal).Error
	})
}

func (s *DatabaseStore) GetFile(id uint) (*File, error) {
	var file File
	err := s.db.First(&file, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (s *DatabaseStore) GetFilesByCID(cid string) ([]File, error) {
	var files []File
	err := s.db.Where("cid = ?", cid).Find(&files).Error
	return files, err
}

func (s *DatabaseStore) GetFilesByWallet(walletAddress string) ([]FileWithDeal, error) {
	var files []File
	err := s.db.Where("wallet_address = ?", walletAddress).
		Order("uploaded_at DESC").
		Find(&files).Error
	if err != nil {
		return nil, err
	}

	result := make([]FileWithDeal, 0, len(files))
	for _, file := range files {
		entry := FileWithDeal{File: file}
		if deal, err := s.GetDealByCID(file.CID); err == nil {
			entry.Deal = deal
		}
		result = append(result, entry)
	}
	return result, nil
}

func (s *DatabaseStore) UpdateFileStatus(id uint, status string, pdpVerified *bool) error {
	updates := map[string]interface{}{"status": status}
	if pdpVerified != nil {
		updates["pdp_verified"] = *pdpVerified
	}
	return s.db.Model(&File{}).Where("id = ?", id).Updates(updates).Error
}

func (s *DatabaseStore) UpdateFileVerification(id uint, pdpVerified bool, lastVerified time.Time) error {
	return s.db.Model(&File{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"pdp_verified":  pdpVerified,
			"last_verified": lastVerified,
		}).Error
}

func (s *DatabaseStore) CreateDeal(deal *Deal) error {
	if deal.Status == "" {
		deal.Status = StatusPending
	}
	return s.db.Create(deal).Error
}

func (s *DatabaseStore) GetDeal(dealID string) (*Deal, error) {
	var deal Deal
	err := s.db.Where("deal_id = ?", dealID).First(&deal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDealNotFound
	}
	if err != nil {
		return nil, err
	}
	return &deal, nil
}

func (s *DatabaseStore) GetDealByCID(cid string) (*Deal, error) {
	var deal Deal
	err := s.db.Where("cid = ?", cid).Order("id ASC").First(&deal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDealNotFound
	}
	if err != nil {
		return nil, err
	}
	return &deal, nil
}

func (s *DatabaseStore) UpdateDealStatus(dealID string, status string, pdpVerified *bool) error {
	updates := map[string]interface{}{"status": status}
	if pdpVerified != nil {
		updates["pdp_verified"] = *pdpVerified
	}
	return s.db.Model(&Deal{}).Where("deal_id = ?", dealID).Updates(updates).Error
}

func (s *DatabaseStore) UpdateDealVerification(dealID string, pdpVerified bool, lastVerified time.Time) error {
	return s.db.Model(&Deal{}).
		Where("deal_id = ?", dealID).
		Updates(map[string]interface{}{
			"pdp_verified":  pdpVerified,
			"last_verified": lastVerified,
		}).Error
}

func (s *DatabaseStore) GetFileStats(walletAddress string) (*FileStats, error) {
	var totalFiles int64
	var activeDeals int64
	var totalStorage int64

	if err := s.db.Model(&File{}).
		Where("wallet_address = ?", walletAddress).
		Count(&totalFiles).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&File{}).
		Where("wallet_address = ? AND status = ?", walletAddress, StatusActive).
		Count(&activeDeals).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&File{}).
		Where("wallet_address = ?", walletAddress).
		Select("COALESCE(SUM(file_size), 0)").
		Scan(&totalStorage).Error; err != nil {
		return nil, err
	}

	return &FileStats{
		TotalFiles:   int(totalFiles),
		ActiveDeals:  int(activeDeals),
		TotalStorage: totalStorage,
		CdnRequests:  s.cdn.get(walletAddress),
	}, nil
}

func (s *DatabaseStore) IncrementCdnRequests(walletAddress string) {
	s.cdn.increment(walletAddress)
}

func (s *DatabaseStore) Counts() (*Counts, error) {
	counts := &Counts{}
	if err := s.db.Model(&File{}).Count(&counts.Files).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&Deal{}).Count(&counts.Deals).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&File{}).
		Select("COALESCE(SUM(file_size), 0)").
		Scan(&counts.StorageBytes).Error; err != nil {
		return nil, err
	}
	return counts, nil
}

func (s *DatabaseStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

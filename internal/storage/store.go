package storage

import (
	"fmt"
	"sync"
	"time"

	"filvault/internal/config"
)

// Store is the record-store contract shared by the in-memory and database
// backends. Update operations are silent no-ops when the target record does
// not exist; optional fields are passed as pointers.
type Store interface {
	CreateFile(file *File) error
	// CreateFileWithDeal persists both records atomically. deal may be nil
	// when the provider returned no deal id.
	CreateFileWithDeal(file *File, deal *Deal) error
	GetFile(id uint) (*File, error)
	GetFilesByCID(cid string) ([]File, error)
	// GetFilesByWallet returns the wallet's files newest-first, each enriched
	// with the first deal matching its CID.
	GetFilesByWallet(walletAddress string) ([]FileWithDeal, error)
	UpdateFileStatus(id uint, status string, pdpVerified *bool) error
	UpdateFileVerification(id uint, pdpVerified bool, lastVerified time.Time) error

	CreateDeal(deal *Deal) error
	GetDeal(dealID string) (*Deal, error)
	GetDealByCID(cid string) (*Deal, error)
	UpdateDealStatus(dealID string, status string, pdpVerified *bool) error
	UpdateDealVerification(dealID string, pdpVerified bool, lastVerified time.Time) error

	GetFileStats(walletAddress string) (*FileStats, error)
	IncrementCdnRequests(walletAddress string)
	Counts() (*Counts, error)

	Close() error
}

// NewStore selects a backend from configuration. The contract behaves
// identically under either backend.
func NewStore(cfg *config.Config) (Store, error) {
	switch cfg.Database.Type {
	case config.DatabaseMemory:
		return NewMemoryStore(), nil
	case config.DatabaseSQLite, config.DatabaseMySQL:
		return NewDatabaseStore(cfg.Database.Type, cfg.GetDatabaseDSN())
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Database.Type)
	}
}

// cdnCounter tracks probe requests per wallet. The counter is process-local
// for both backends; it restarts at zero with the process.
type cdnCounter struct {
	mu     sync.Mutex
	counts map[string]int64
}

func newCdnCounter() *cdnCounter {
	return &cdnCounter{counts: make(map[string]int64)}
}

func (c *cdnCounter) increment(walletAddress string) {
	c.mu.Lock()
	c.counts[walletAddress]++
	c.mu.Unlock()
}

func (c *cdnCounter) get(walletAddress string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[walletAddress]
}

package storage

import (
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps all records in process memory. It exists for development
// and tests; everything is lost on restart.
type MemoryStore struct {
	mu         sync.RWMutex
	files      map[uint]*File
	deals      map[string]*Deal // keyed by provider deal id
	dealsByCID map[string]*Deal // first deal per CID, kept alongside to avoid scans
	nextFileID uint
	nextDealID uint
	cdn        *cdnCounter
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		files:      make(map[uint]*File),
		deals:      make(map[string]*Deal),
		dealsByCID: make(map[string]*Deal),
		nextFileID: 1,
		nextDealID: 1,
		cdn:        newCdnCounter(),
	}
}

func (s *MemoryStore) CreateFile(file *File) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createFileLocked(file)
	return nil
}

func (s *MemoryStore) createFileLocked(file *File) {
	file.ID = s.nextFileID
	s.nextFileID++
	if file.Status == "" {
		file.Status = StatusUploading
	}
	file.UploadedAt = time.Now()
	file.LastVerified = nil

	stored := *file
	s.files[file.ID] = &stored
}

func (s *MemoryStore) CreateFileWithDeal(file *File, deal *Deal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.createFileLocked(file)
	if deal != nil {
		deal.FileID = file.ID
		s.createDealLocked(deal)
	}
	return nil
}

func (s *MemoryStore) GetFile(id uint) (*File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, ok := s.files[id]
	if !ok {
		return nil, ErrFileNotFound
	}
	copied := *file
	return &copied, nil
}

func (s *MemoryStore) GetFilesByCID(cid string) ([]File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var files []File
	for _, file := range s.files {
		if file.CID == cid {
			files = append(files, *file)
		}
	}
	return files, nil
}

func (s *MemoryStore) GetFilesByWallet(walletAddress string) ([]FileWithDeal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var files []*File
	for _, file := range s.files {
		if file.WalletAddress == walletAddress {
			files = append(files, file)
		}
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].UploadedAt.After(files[j].UploadedAt)
	})

	result := make([]FileWithDeal, 0, len(files))
	for _, file := range files {
		entry := FileWithDeal{File: *file}
		if deal, ok := s.dealsByCID[file.CID]; ok {
			copied := *deal
			entry.Deal = &copied
		}
		result = append(result, entry)
	}
	return result, nil
}

func (s *MemoryStore) UpdateFileStatus(id uint, status string, pdpVerified *bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, ok := s.files[id]
	if !ok {
		return nil
	}
	file.Status = status
	if pdpVerified != nil {
		file.PDPVerified = *pdpVerified
	}
	return nil
}

func (s *MemoryStore) UpdateFileVerification(id uint, pdpVerified bool, lastVerified time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, ok := s.files[id]
	if !ok {
		return nil
	}
	file.PDPVerified = pdpVerified
	file.LastVerified = &lastVerified
	return nil
}

func (s *MemoryStore) CreateDeal(deal *Deal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createDealLocked(deal)
	return nil
}

// createDealLocked stores the deal keyed by deal id. A colliding deal id
// overwrites the previous record; deal id uniqueness is the caller's problem.
func (s *MemoryStore) createDealLocked(deal *Deal) {
	deal.ID = s.nextDealID
	s.nextDealID++
	if deal.Status == "" {
		deal.Status = StatusPending
	}
	deal.CreatedAt = time.Now()
	deal.LastVerified = nil

	stored := *deal
	s.deals[deal.DealID] = &stored
	if _, ok := s.dealsByCID[deal.CID]; !ok {
		s.dealsByCID[deal.CID] = &stored
	}
}

func (s *MemoryStore) GetDeal(dealID string) (*Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	deal, ok := s.deals[dealID]
	if !ok {
		return nil, ErrDealNotFound
	}
	copied := *deal
	return &copied, nil
}

func (s *MemoryStore) GetDealByCID(cid string) (*Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	deal, ok := s.dealsByCID[cid]
	if !ok {
		return nil, ErrDealNotFound
	}
	copied := *deal
	return &copied, nil
}

func (s *MemoryStore) UpdateDealStatus(dealID string, status string, pdpVerified *bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	deal, ok := s.deals[dealID]
	if !ok {
		return nil
	}
	deal.Status = status
	if pdpVerified != nil {
		deal.PDPVerified = *pdpVerified
	}
	return nil
}

func (s *MemoryStore) UpdateDealVerification(dealID string, pdpVerified bool, lastVerified time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	deal, ok := s.deals[dealID]
	if !ok {
		return nil
	}
	deal.PDPVerified = pdpVerified
	deal.LastVerified = &lastVerified
	return nil
}

func (s *MemoryStore) GetFileStats(walletAddress string) (*FileStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &FileStats{}
	for _, file := range s.files {
		if file.WalletAddress != walletAddress {
			continue
		}
		stats.TotalFiles++
		stats.TotalStorage += file.FileSize
		if file.Status == StatusActive {
			stats.ActiveDeals++
		}
	}
	stats.CdnRequests = s.cdn.get(walletAddress)
	return stats, nil
}

func (s *MemoryStore) IncrementCdnRequests(walletAddress string) {
	s.cdn.increment(walletAddress)
}

func (s *MemoryStore) Counts() (*Counts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := &Counts{
		Files: int64(len(s.files)),
		Deals: int64(len(s.deals)),
	}
	for _, file := range s.files {
		counts.StorageBytes += file.FileSize
	}
	return counts, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

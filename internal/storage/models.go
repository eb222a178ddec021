package storage

import "time"

// File status values. "uploading" only exists transiently: the provider
// upload is synchronous, so records are created already active.
const (
	StatusUploading = "uploading"
	StatusPending   = "pending"
	StatusActive    = "active"
	StatusSealing   = "sealing"
	StatusFailed    = "failed"
)

// File is a user-visible upload record. CID and UploadedAt are set once at
// creation and never change; status and verification fields are rewritten by
// status checks.
type File struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Filename      string     `gorm:"size:255;not null" json:"filename"`
	OriginalName  string     `gorm:"size:255;not null" json:"originalName"`
	CID           string     `gorm:"size:128;index;not null" json:"cid"`
	DealID        string     `gorm:"size:64" json:"dealId,omitempty"`
	FileSize      int64      `gorm:"not null" json:"fileSize"`
	MimeType      string     `gorm:"size:100;not null" json:"mimeType"`
	WalletAddress string     `gorm:"size:64;index;not null" json:"walletAddress"`
	PDPEnabled    bool       `gorm:"default:true" json:"pdpEnabled"`
	FilCDNEnabled bool       `gorm:"default:true" json:"filcdnEnabled"`
	Status        string     `gorm:"size:16;not null;default:uploading" json:"status"`
	PDPVerified   bool       `gorm:"default:false" json:"pdpVerified"`
	LastVerified  *time.Time `json:"lastVerified,omitempty"`
	UploadedAt    time.Time  `gorm:"autoCreateTime;index" json:"uploadedAt"`
	FilCDNUrl     string     `gorm:"size:512" json:"filcdnUrl,omitempty"`
}

func (File) TableName() string {
	return "files"
}

// Deal is a storage-deal record. It is correlated to files by CID equality,
// not by foreign key, and looked up by its provider-assigned deal id.
type Deal struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	FileID       uint       `gorm:"index" json:"fileId,omitempty"`
	DealID       string     `gorm:"size:64;uniqueIndex;not null" json:"dealId"`
	CID          string     `gorm:"size:128;index;not null" json:"cid"`
	Status       string     `gorm:"size:16;not null" json:"status"`
	PDPVerified  bool       `gorm:"default:false" json:"pdpVerified"`
	LastVerified *time.Time `json:"lastVerified,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"createdAt"`
}

func (Deal) TableName() string {
	return "deals"
}

// FileWithDeal enriches a File with the first deal matching its CID, if any.
type FileWithDeal struct {
	File
	Deal *Deal `json:"deal,omitempty"`
}

// Counts is the store-wide record census reported by health and metrics
// endpoints.
type Counts struct {
	Files        int64 `json:"files"`
	Deals        int64 `json:"deals"`
	StorageBytes int64 `json:"storageBytes"`
}

// FileStats aggregates a wallet's upload records. CdnRequests counts the
// status/verify probes this process served for the wallet's CIDs; edge-side
// CDN traffic is not visible here.
type FileStats struct {
	TotalFiles   int   `json:"totalFiles"`
	ActiveDeals  int   `json:"activeDeals"`
	TotalStorage int64 `json:"totalStorage"`
	CdnRequests  int64 `json:"cdnRequests"`
}

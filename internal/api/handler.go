package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"filvault/internal/provider"
	"filvault/internal/storage"

	"github.com/gin-gonic/gin"
)

// Handler sequences provider calls with record-store writes for the /api
// routes.
type Handler struct {
	store  storage.Store
	client *provider.Client
}

func NewHandler(store storage.Store, client *provider.Client) *Handler {
	return &Handler{store: store, client: client}
}

// Upload handles POST /api/upload: validate, push to the provider, persist
// file and deal records, return the identifiers.
func (h *Handler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})
		return
	}

	walletAddress := c.PostForm("walletAddress")
	if walletAddress == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "wallet address required"})
		return
	}

	if fileHeader.Size > h.client.MaxFileSize() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file exceeds maximum upload size"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open file"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read file"})
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = provider.DetectMimeType(fileHeader.Filename, data)
	}

	if err := h.client.ValidateUpload(fileHeader.Filename, mimeType, int64(len(data))); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := h.client.Upload(c.Request.Context(), data, fileHeader.Filename)

	file := &storage.File{
		Filename:      fileHeader.Filename,
		OriginalName:  fileHeader.Filename,
		CID:           result.CID,
		DealID:        result.DealID,
		FileSize:      int64(len(data)),
		MimeType:      mimeType,
		WalletAddress: walletAddress,
		PDPEnabled:    true,
		FilCDNEnabled: true,
		Status:        storage.StatusActive,
		PDPVerified:   false,
		FilCDNUrl:     result.FilCDNUrl,
	}

	var deal *storage.Deal
	if result.DealID != "" {
		deal = &storage.Deal{
			DealID:      result.DealID,
			CID:         result.CID,
			Status:      storage.StatusActive,
			PDPVerified: false,
		}
	}

	if err := h.store.CreateFileWithDeal(file, deal); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"fileId":    file.ID,
		"cid":       result.CID,
		"dealId":    result.DealID,
		"filcdnUrl": result.FilCDNUrl,
		"status":    file.Status,
	})
}

// DealStatus handles GET /api/deal/:cid. The fetched status is returned even
// when no local deal exists; when one does, its record is rewritten to match.
func (h *Handler) DealStatus(c *gin.Context) {
	cid := c.Param("cid")

	status := h.client.CheckStatus(c.Request.Context(), cid)

	deal, err := h.store.GetDealByCID(cid)
	if err == nil {
		h.applySealDeadline(status, deal)
		if err := h.store.UpdateDealStatus(deal.DealID, status.Status, &status.PDPVerified); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update deal"})
			return
		}
		if status.PDPVerified {
			if err := h.store.UpdateDealVerification(deal.DealID, true, time.Now()); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update deal"})
				return
			}
		}
		status.DealID = deal.DealID
	} else if !errors.Is(err, storage.ErrDealNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up deal"})
		return
	}

	h.countProbe(cid)
	c.JSON(http.StatusOK, status)
}

// Verify handles POST /api/verify/:cid and reports only the verified flag.
func (h *Handler) Verify(c *gin.Context) {
	cid := c.Param("cid")

	status := h.client.CheckStatus(c.Request.Context(), cid)

	deal, err := h.store.GetDealByCID(cid)
	if err == nil {
		if err := h.store.UpdateDealVerification(deal.DealID, status.PDPVerified, time.Now()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update deal"})
			return
		}
	} else if !errors.Is(err, storage.ErrDealNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up deal"})
		return
	}

	h.countProbe(cid)
	c.JSON(http.StatusOK, gin.H{"verified": status.PDPVerified})
}

// ListFiles handles GET /api/files/:wallet, newest first.
func (h *Handler) ListFiles(c *gin.Context) {
	wallet := c.Param("wallet")

	files, err := h.store.GetFilesByWallet(wallet)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get files"})
		return
	}

	c.JSON(http.StatusOK, files)
}

// Stats handles GET /api/stats/:wallet.
func (h *Handler) Stats(c *gin.Context) {
	wallet := c.Param("wallet")

	stats, err := h.store.GetFileStats(wallet)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// applySealDeadline downgrades a long-unreachable deal from sealing to
// failed. The mapping is time-based so back-to-back checks stay idempotent;
// a later successful probe returns the deal to active.
func (h *Handler) applySealDeadline(status *provider.DealStatus, deal *storage.Deal) {
	if status.Status == storage.StatusSealing &&
		time.Since(deal.CreatedAt) > h.client.SealDeadline() {
		status.Status = storage.StatusFailed
	}
}

// countProbe attributes a status probe to the wallets owning the CID.
func (h *Handler) countProbe(cid string) {
	files, err := h.store.GetFilesByCID(cid)
	if err != nil {
		return
	}
	seen := make(map[string]bool, len(files))
	for _, file := range files {
		if !seen[file.WalletAddress] {
			seen[file.WalletAddress] = true
			h.store.IncrementCdnRequests(file.WalletAddress)
		}
	}
}

// Package httpapi exposes the REST surface of the NoteLink backend:
// device authentication, profile, contact directory, invite links, and the
// pending share ledger.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/notelinkapp/notelink/internal/logging"
	"github.com/notelinkapp/notelink/internal/server/accounts"
	"github.com/notelinkapp/notelink/internal/server/contacts"
	"github.com/notelinkapp/notelink/internal/server/shares"
)

type Handler struct {
	accounts *accounts.Service
	contacts *contacts.Service
	shares   *shares.Service
	logger   logging.Logger
}

func NewHandler(accountSvc *accounts.Service, contactSvc *contacts.Service, shareSvc *shares.Service, logger logging.Logger) *Handler {
	return &Handler{
		accounts: accountSvc,
		contacts: contactSvc,
		shares:   shareSvc,
		logger:   logger,
	}
}

type authRequest struct {
	DeviceID string `json:"deviceId"`
	Phone    string `json:"phone"`
}

type authResponse struct {
	Token     string `json:"token"`
	DeviceID  string `json:"deviceId"`
	AccountID string `json:"accountId"`
	IsNewUser bool   `json:"isNewUser"`
}

func (h *Handler) AuthenticateDevice(c *gin.Context) {
	var req authRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.accounts.Authenticate(c.Request.Context(), req.DeviceID, req.Phone)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.logger.Info(c.Request.Context(), "device authenticated", "account_id", result.AccountID, "new_user", result.IsNewUser)

	c.JSON(http.StatusOK, authResponse{
		Token:     result.Token,
		DeviceID:  result.DeviceID,
		AccountID: result.AccountID,
		IsNewUser: result.IsNewUser,
	})
}

type userResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	PhoneLinked bool      `json:"phoneLinked"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toUserResponse(a *accounts.Account) userResponse {
	return userResponse{
		ID:          a.ID,
		Username:    a.Username,
		PhoneLinked: a.PhoneHash != "",
		CreatedAt:   a.CreatedAt,
	}
}

func (h *Handler) GetMe(c *gin.Context) {
	account, err := h.accounts.Me(c.Request.Context(), AccountID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(account))
}

type updateMeRequest struct {
	Username string `json:"username"`
	Phone    string `json:"phone"`
}

func (h *Handler) UpdateMe(c *gin.Context) {
	var req updateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	account, err := h.accounts.UpdateProfile(c.Request.Context(), AccountID(c), req.Username, req.Phone)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(account))
}

func (h *Handler) GetUser(c *gin.Context) {
	account, err := h.contacts.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponse{ID: account.ID, Username: account.Username})
}

type matchRequest struct {
	PhoneHashes []string `json:"phoneHashes" binding:"required"`
}

type matchResponse struct {
	Users []userResponse `json:"users"`
}

// MatchContacts resolves privacy-preserving phone hashes into registered
// accounts. Unmatched hashes are dropped, not errors.
func (h *Handler) MatchContacts(c *gin.Context) {
	var req matchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	matched, err := h.contacts.MatchByPhoneHashes(c.Request.Context(), req.PhoneHashes)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := matchResponse{Users: []userResponse{}}
	for _, a := range matched {
		resp.Users = append(resp.Users, userResponse{ID: a.ID, Username: a.Username})
	}
	c.JSON(http.StatusOK, resp)
}

type contactResponse struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Mutual   bool      `json:"mutual"`
	AddedAt  time.Time `json:"addedAt"`
}

func toContactResponse(ct *contacts.Contact) contactResponse {
	return contactResponse{ID: ct.AccountID, Username: ct.Username, Mutual: ct.Mutual, AddedAt: ct.AddedAt}
}

func (h *Handler) ListContacts(c *gin.Context) {
	list, err := h.contacts.List(c.Request.Context(), AccountID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]contactResponse, 0, len(list))
	for _, ct := range list {
		resp = append(resp, toContactResponse(ct))
	}
	c.JSON(http.StatusOK, gin.H{"contacts": resp})
}

type addContactRequest struct {
	UserID string `json:"userId" binding:"required"`
	// Mutual is accepted as a client hint only; the server recomputes it
	// from the reciprocal edge.
	Mutual bool `json:"mutual"`
}

func (h *Handler) AddContact(c *gin.Context) {
	var req addContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	contact, err := h.contacts.Add(c.Request.Context(), AccountID(c), req.UserID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toContactResponse(contact))
}

func (h *Handler) RemoveContact(c *gin.Context) {
	if err := h.contacts.Remove(c.Request.Context(), AccountID(c), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) GetInviteLink(c *gin.Context) {
	link, err := h.contacts.InviteLink(AccountID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"link": link})
}

type acceptInviteRequest struct {
	Token string `json:"token" binding:"required"`
}

func (h *Handler) AcceptInvite(c *gin.Context) {
	var req acceptInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	contact, err := h.contacts.AcceptInvite(c.Request.Context(), AccountID(c), req.Token)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toContactResponse(contact))
}

type createShareRequest struct {
	Phone     string `json:"phone"`
	PhoneHash string `json:"phoneHash"`
	NoteID    string `json:"noteId" binding:"required"`
}

type shareResponse struct {
	ID         string     `json:"id"`
	NoteID     string     `json:"noteId"`
	InviterID  string     `json:"inviterId"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
}

func toShareResponse(s *shares.PendingShare) shareResponse {
	return shareResponse{
		ID:         s.ID,
		NoteID:     s.NoteID,
		InviterID:  s.InviterID,
		Status:     s.Status(),
		CreatedAt:  s.CreatedAt,
		ResolvedAt: s.ResolvedAt,
	}
}

func (h *Handler) CreateShare(c *gin.Context) {
	var req createShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Phone == "" && req.PhoneHash == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "share target required"})
		return
	}

	share, err := h.shares.Create(c.Request.Context(), AccountID(c), req.Phone, req.PhoneHash, req.NoteID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toShareResponse(share))
}

func (h *Handler) ListShares(c *gin.Context) {
	list, err := h.shares.ListIncoming(c.Request.Context(), AccountID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]shareResponse, 0, len(list))
	for _, s := range list {
		resp = append(resp, toShareResponse(s))
	}
	c.JSON(http.StatusOK, gin.H{"shares": resp})
}

func (h *Handler) AcceptShare(c *gin.Context) {
	share, err := h.shares.Accept(c.Request.Context(), AccountID(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toShareResponse(share))
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

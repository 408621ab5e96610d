package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/vocabnote/internal/model"
	"github.com/xxxsen/vocabnote/internal/pkg/errcode"
	appErr "github.com/xxxsen/vocabnote/internal/pkg/errors"
	"github.com/xxxsen/vocabnote/internal/pkg/response"
	"github.com/xxxsen/vocabnote/internal/service"
)

type WordHandler struct {
	words          *service.WordService
	listPath       string
	strictNotFound bool
}

func NewWordHandler(words *service.WordService, listPath string, strictNotFound bool) *WordHandler {
	return &WordHandler{words: words, listPath: listPath, strictNotFound: strictNotFound}
}

func (h *WordHandler) List(c *gin.Context) {
	userID := getUserID(c)
	words := h.words.List(c.Request.Context(), userID)
	response.Success(c, gin.H{"user_id": userID, "words": words})
}

// Get serves one word. Unknown ids go back to the list unless strict
// not-found is enabled.
func (h *WordHandler) Get(c *gin.Context) {
	word, err := h.words.Get(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, appErr.ErrNotFound) && !h.strictNotFound {
			c.Redirect(http.StatusFound, h.listPath)
			return
		}
		handleError(c, err)
		return
	}
	response.Success(c, word)
}

type submitWordRequest struct {
	Word      string `json:"word" binding:"required,max=200"`
	Domain    string `json:"domain" binding:"max=100"`
	SourceURL string `json:"source_url" binding:"max=2048"`
}

func (h *WordHandler) Submit(c *gin.Context) {
	var req submitWordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorStatus(c, http.StatusBadRequest, errcode.ErrInvalid, "word required")
		return
	}
	id, err := h.words.Submit(c.Request.Context(), model.WordSubmission{
		UserID:    getUserID(c),
		Word:      req.Word,
		Domain:    req.Domain,
		SourceURL: req.SourceURL,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"record_id": id})
}

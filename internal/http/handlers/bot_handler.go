// Dialogue-engine endpoints.
//
//   - POST /bot/action/:name    slot bag in → slot events + utterances out
//   - POST /bot/validate/:slot  candidate value in → verdict out
//
// The chatbot front end drives conversations itself; these endpoints are
// its action server.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ileco-one/triage-backend/internal/bot"
)

// BotAction handles POST /bot/action/:name.
func (h *Handlers) BotAction(c *gin.Context) {
	var req bot.ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "malformed action payload")
		return
	}

	res, err := h.deps.Bot.Action(c.Request.Context(), c.Param("name"), req)
	if err != nil {
		if errors.Is(err, bot.ErrUnknownAction) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
			return
		}
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, res)
}

// ValidateSlotRequest is the JSON payload for POST /bot/validate/:slot.
type ValidateSlotRequest struct {
	Value string `json:"value"`
}

// BotValidate handles POST /bot/validate/:slot.
func (h *Handlers) BotValidate(c *gin.Context) {
	var req ValidateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "malformed validate payload")
		return
	}

	res, err := h.deps.Bot.Validate(c.Param("slot"), req.Value)
	if err != nil {
		if errors.Is(err, bot.ErrUnknownSlot) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "unexpected error")
		return
	}
	ok(c, http.StatusOK, res)
}

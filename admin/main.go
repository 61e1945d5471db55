package admin

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TheFirstHero6/noah-game-sub000/auth"
	"github.com/TheFirstHero6/noah-game-sub000/payloads"
	"github.com/TheFirstHero6/noah-game-sub000/turn"
)

var resolver *turn.Resolver

func Initialize(r *turn.Resolver) {
	resolver = r
}

type AdvanceTurnPayload struct {
	RealmID uint `json:"realmId" binding:"required"`
}

// AdvanceTurn resolves one turn for a realm. Owner or ADMIN only; a
// concurrent advance on the same realm gets 409.
func AdvanceTurn(c *gin.Context) {
	var payload AdvanceTurnPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, payloads.ErrorResponse{Error: "invalid-payload"})
		return
	}

	user := auth.CurrentUser(c)
	processed, err := resolver.Advance(c.Request.Context(), payload.RealmID, user)
	if err != nil {
		payloads.SendError(c, err)
		return
	}

	c.JSON(http.StatusOK, payloads.SuccessResponse{
		Success: true,
		Message: fmt.Sprintf("turn resolved for %d members", processed),
	})
}

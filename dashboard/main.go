package dashboard

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/TheFirstHero6/noah-game-sub000/auth"
	"github.com/TheFirstHero6/noah-game-sub000/models"
	"github.com/TheFirstHero6/noah-game-sub000/payloads"
	"github.com/TheFirstHero6/noah-game-sub000/rules"
	"github.com/TheFirstHero6/noah-game-sub000/turn"
)

var db *gorm.DB
var redisClient *redis.Client

func Initialize(d *gorm.DB, r *redis.Client) {
	db = d
	redisClient = r
}

func Resources(c *gin.Context) {
	realmID, err := strconv.ParseUint(c.Query("realmId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, payloads.ErrorResponse{Error: "invalid-realm-id"})
		return
	}

	user := auth.CurrentUser(c)
	if _, err := models.MembershipFor(c.Request.Context(), db, uint(realmID), user.ID); err != nil {
		payloads.SendError(c, err)
		return
	}

	resource, err := models.EnsureResources(c.Request.Context(), db, uint(realmID), user.ID)
	if err != nil {
		payloads.SendError(c, err)
		return
	}

	c.JSON(http.StatusOK, resource)
}

type TransferPayload struct {
	ToUserID uint    `json:"toUserId" binding:"required"`
	RealmID  uint    `json:"realmId" binding:"required"`
	Amount   float64 `json:"amount" binding:"required"`
	Resource string  `json:"resource" binding:"required"`
}

func Transfer(c *gin.Context) {
	var payload TransferPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, payloads.ErrorResponse{Error: "invalid-payload"})
		return
	}

	kind, err := rules.ParseResourceKind(payload.Resource)
	if err != nil {
		c.JSON(http.StatusBadRequest, payloads.ErrorResponse{Error: err.Error()})
		return
	}

	user := auth.CurrentUser(c)
	if _, err := models.MembershipFor(c.Request.Context(), db, payload.RealmID, user.ID); err != nil {
		payloads.SendError(c, err)
		return
	}

	err = models.TransferResource(c.Request.Context(), db, payload.RealmID, user.ID, payload.ToUserID, kind, payload.Amount)
	if err != nil {
		payloads.SendError(c, err)
		return
	}

	c.JSON(http.StatusOK, payloads.SuccessResponse{Success: true, Message: "transfer complete"})
}

type RankingEntry struct {
	UserID uint    `json:"user_id"`
	Score  float64 `json:"score"`
}

// Rankings reads the realm leaderboard maintained by turn resolution.
func Rankings(c *gin.Context) {
	realmID, err := strconv.ParseUint(c.Query("realmId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, payloads.ErrorResponse{Error: "invalid-realm-id"})
		return
	}

	user := auth.CurrentUser(c)
	if _, err := models.MembershipFor(c.Request.Context(), db, uint(realmID), user.ID); err != nil {
		payloads.SendError(c, err)
		return
	}

	if redisClient == nil {
		c.JSON(http.StatusOK, []RankingEntry{})
		return
	}

	entries, err := redisClient.ZRevRangeWithScores(c.Request.Context(), turn.RankingsKey(uint(realmID)), 0, 24).Result()
	if err != nil {
		payloads.SendError(c, err)
		return
	}

	rankings := make([]RankingEntry, 0, len(entries))
	for _, entry := range entries {
		id, _ := strconv.ParseUint(entry.Member.(string), 10, 32)
		rankings = append(rankings, RankingEntry{UserID: uint(id), Score: entry.Score})
	}

	c.JSON(http.StatusOK, rankings)
}

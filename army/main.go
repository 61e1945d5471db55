package army

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/TheFirstHero6/noah-game-sub000/auth"
	"github.com/TheFirstHero6/noah-game-sub000/models"
	"github.com/TheFirstHero6/noah-game-sub000/payloads"
)

var db *gorm.DB

func Initialize(d *gorm.DB) {
	db = d
}

func List(c *gin.Context) {
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

	armies, err := models.ArmiesForUser(c.Request.Context(), db, uint(realmID), user.ID)
	if err != nil {
		payloads.SendError(c, err)
		return
	}

	c.JSON(http.StatusOK, armies)
}

type CreatePayload struct {
	RealmID uint   `json:"realmId" binding:"required"`
	Name    string `json:"name" binding:"required"`
}

func Create(c *gin.Context) {
	var payload CreatePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, payloads.ErrorResponse{Error: "invalid-payload"})
		return
	}

	user := auth.CurrentUser(c)
	army, err := models.CreateArmy(c.Request.Context(), db, payload.RealmID, user, payload.Name)
	if err != nil {
		payloads.SendError(c, err)
		return
	}

	c.JSON(http.StatusCreated, army)
}

type RecruitPayload struct {
	UnitType string `json:"unitType" binding:"required"`
	Quantity uint   `json:"quantity" binding:"required"`
}

func Recruit(c *gin.Context) {
	armyID, err := strconv.ParseUint(c.Param("armyId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, payloads.ErrorResponse{Error: "invalid-army-id"})
		return
	}

	var payload RecruitPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, payloads.ErrorResponse{Error: "invalid-payload"})
		return
	}

	army, err := models.LoadArmy(c.Request.Context(), db, uint(armyID))
	if err != nil {
		payloads.SendError(c, err)
		return
	}

	if army.UserID != auth.CurrentUser(c).ID {
		c.JSON(http.StatusForbidden, payloads.ErrorResponse{Error: models.ErrForbidden.Error()})
		return
	}

	if err := army.Recruit(c.Request.Context(), db, payload.UnitType, payload.Quantity); err != nil {
		payloads.SendError(c, err)
		return
	}

	refreshed, err := models.LoadArmy(c.Request.Context(), db, army.ID)
	if err != nil {
		payloads.SendError(c, err)
		return
	}

	c.JSON(http.StatusOK, refreshed)
}

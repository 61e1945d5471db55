package city

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

// ownCity loads the :id city and checks the caller owns it.
func ownCity(c *gin.Context) (*models.City, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, payloads.ErrorResponse{Error: "invalid-city-id"})
		return nil, false
	}

	city, err := models.LoadCity(c.Request.Context(), db, uint(id))
	if err != nil {
		payloads.SendError(c, err)
		return nil, false
	}

	if city.UserID != auth.CurrentUser(c).ID {
		c.JSON(http.StatusForbidden, payloads.ErrorResponse{Error: models.ErrForbidden.Error()})
		return nil, false
	}

	return city, true
}

func realmIDQuery(c *gin.Context) (uint, bool) {
	realmID, err := strconv.ParseUint(c.Query("realmId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, payloads.ErrorResponse{Error: "invalid-realm-id"})
		return 0, false
	}

	return uint(realmID), true
}

func List(c *gin.Context) {
	realmID, ok := realmIDQuery(c)
	if !ok {
		return
	}

	user := auth.CurrentUser(c)
	if _, err := models.MembershipFor(c.Request.Context(), db, realmID, user.ID); err != nil {
		payloads.SendError(c, err)
		return
	}

	cities, err := models.CitiesForUser(c.Request.Context(), db, realmID, user.ID)
	if err != nil {
		payloads.SendError(c, err)
		return
	}

	c.JSON(http.StatusOK, cities)
}

type FoundPayload struct {
	RealmID uint   `json:"realmId" binding:"required"`
	Name    string `json:"name" binding:"required"`
}

func Found(c *gin.Context) {
	var payload FoundPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, payloads.ErrorResponse{Error: "invalid-payload"})
		return
	}

	user := auth.CurrentUser(c)
	city, err := models.FoundCity(c.Request.Context(), db, payload.RealmID, user, payload.Name)
	if err != nil {
		payloads.SendError(c, err)
		return
	}

	c.JSON(http.StatusCreated, city)
}

// BuildPayload's rarity field is the building tier; the wire name is
// kept for client compatibility.
type BuildPayload struct {
	Name   string `json:"name" binding:"required"`
	Rarity int    `json:"rarity" binding:"required"`
}

func Build(c *gin.Context) {
	city, ok := ownCity(c)
	if !ok {
		return
	}

	var payload BuildPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, payloads.ErrorResponse{Error: "invalid-payload"})
		return
	}

	building, err := city.Construct(c.Request.Context(), db, payload.Name, payload.Rarity)
	if err != nil {
		payloads.SendError(c, err)
		return
	}

	c.JSON(http.StatusCreated, building)
}

type UpgradePayload struct {
	TargetTier int `json:"targetTier" binding:"required"`
}

func Upgrade(c *gin.Context) {
	city, ok := ownCity(c)
	if !ok {
		return
	}

	var payload UpgradePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, payloads.ErrorResponse{Error: "invalid-payload"})
		return
	}

	if err := city.Upgrade(c.Request.Context(), db, payload.TargetTier); err != nil {
		payloads.SendError(c, err)
		return
	}

	c.JSON(http.StatusOK, city)
}

type TaxPayload struct {
	TaxRate *uint `json:"taxRate" binding:"required"`
}

func SetTax(c *gin.Context) {
	city, ok := ownCity(c)
	if !ok {
		return
	}

	var payload TaxPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, payloads.ErrorResponse{Error: "invalid-payload"})
		return
	}

	if err := city.SetTaxRate(c.Request.Context(), db, *payload.TaxRate); err != nil {
		payloads.SendError(c, err)
		return
	}

	c.JSON(http.StatusOK, city)
}

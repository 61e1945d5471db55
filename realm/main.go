package realm

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

type CreatePayload struct {
	Name string `json:"name" binding:"required"`
}

func Create(c *gin.Context) {
	var payload CreatePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, payloads.ErrorResponse{Error: "invalid-payload"})
		return
	}

	user := auth.CurrentUser(c)
	realm, err := models.CreateRealm(c.Request.Context(), db, user, payload.Name)
	if err != nil {
		payloads.SendError(c, err)
		return
	}

	c.JSON(http.StatusCreated, realm)
}

func List(c *gin.Context) {
	user := auth.CurrentUser(c)
	realms, err := models.RealmsForUser(c.Request.Context(), db, user)
	if err != nil {
		payloads.SendError(c, err)
		return
	}

	c.JSON(http.StatusOK, realms)
}

func Get(c *gin.Context) {
	realm := auth.CurrentRealm(c)

	members, err := realm.Members(c.Request.Context(), db)
	if err != nil {
		payloads.SendError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"realm": realm, "members": members})
}

type JoinPayload struct {
	Code string `json:"code" binding:"required"`
}

func Join(c *gin.Context) {
	var payload JoinPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, payloads.ErrorResponse{Error: "invalid-payload"})
		return
	}

	user := auth.CurrentUser(c)
	realm, err := models.JoinRealmByCode(c.Request.Context(), db, user, payload.Code)
	if err != nil {
		payloads.SendError(c, err)
		return
	}

	c.JSON(http.StatusOK, realm)
}

type RolePayload struct {
	Role string `json:"role" binding:"required"`
}

func SetRole(c *gin.Context) {
	var payload RolePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, payloads.ErrorResponse{Error: "invalid-payload"})
		return
	}

	role, err := models.ParseRole(payload.Role)
	if err != nil {
		payloads.SendError(c, err)
		return
	}

	targetID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, payloads.ErrorResponse{Error: "invalid-user-id"})
		return
	}

	realm := auth.CurrentRealm(c)
	user := auth.CurrentUser(c)

	if err := realm.SetMemberRole(c.Request.Context(), db, user, uint(targetID), role); err != nil {
		payloads.SendError(c, err)
		return
	}

	c.JSON(http.StatusOK, payloads.SuccessResponse{Success: true, Message: "role updated"})
}

func RemoveMember(c *gin.Context) {
	targetID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, payloads.ErrorResponse{Error: "invalid-user-id"})
		return
	}

	realm := auth.CurrentRealm(c)
	user := auth.CurrentUser(c)

	if err := realm.RemoveMember(c.Request.Context(), db, user, uint(targetID)); err != nil {
		payloads.SendError(c, err)
		return
	}

	c.JSON(http.StatusOK, payloads.SuccessResponse{Success: true, Message: "member removed"})
}

func Events(c *gin.Context) {
	realm := auth.CurrentRealm(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	events, err := models.LoadRealmEvents(c.Request.Context(), db, realm.ID, page)
	if err != nil {
		payloads.SendError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}

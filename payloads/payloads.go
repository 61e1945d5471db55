package payloads

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/TheFirstHero6/noah-game-sub000/models"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SendError maps model errors onto the API's status bands: sentinels
// to 404/403/409, validation GameErrors to 400, anything else to a
// logged 500 with a generic message.
func SendError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrRealmNotFound),
		errors.Is(err, models.ErrCityNotFound),
		errors.Is(err, models.ErrArmyNotFound),
		errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrTurnInProgress):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	default:
		var gameErr models.GameError
		if errors.As(err, &gameErr) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: gameErr.Error()})
			return
		}

		log.Error().Err(err).Str("path", c.FullPath()).Msg("Unexpected error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal-error"})
	}
}

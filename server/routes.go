package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/TheFirstHero6/noah-game-sub000/admin"
	"github.com/TheFirstHero6/noah-game-sub000/army"
	"github.com/TheFirstHero6/noah-game-sub000/auth"
	"github.com/TheFirstHero6/noah-game-sub000/city"
	"github.com/TheFirstHero6/noah-game-sub000/dashboard"
	"github.com/TheFirstHero6/noah-game-sub000/live"
	"github.com/TheFirstHero6/noah-game-sub000/models"
	"github.com/TheFirstHero6/noah-game-sub000/realm"
)

// SetupRoutes registers the API surface on the gin engine.
func SetupRoutes(r *gin.Engine) {
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	api := r.Group("/api", auth.Middleware())
	{
		realms := api.Group("/realms")
		{
			realms.POST("", realm.Create)
			realms.GET("", realm.List)
			realms.POST("/join", realm.Join)

			scoped := realms.Group("/:realmId", auth.RequireRealmRole(models.RoleBasic))
			{
				scoped.GET("", realm.Get)
				scoped.GET("/events", realm.Events)
			}

			owned := realms.Group("/:realmId", auth.RequireRealmRole(models.RoleAdmin))
			{
				owned.PUT("/members/:userId/role", realm.SetRole)
				owned.DELETE("/members/:userId", realm.RemoveMember)
			}
		}

		cities := api.Group("/cities")
		{
			cities.GET("", city.List)
			cities.POST("", city.Found)
			cities.POST("/:id/build", city.Build)
			cities.POST("/:id/upgrade", city.Upgrade)
			cities.PUT("/:id/tax", city.SetTax)
		}

		armies := api.Group("/armies")
		{
			armies.GET("", army.List)
			armies.POST("", army.Create)
			armies.POST("/:armyId/units", army.Recruit)
		}

		dash := api.Group("/dashboard")
		{
			dash.GET("/resources", dashboard.Resources)
			dash.POST("/transfering", dashboard.Transfer)
			dash.GET("/rankings", dashboard.Rankings)
		}

		api.POST("/admin/advance-turn", admin.AdvanceTurn)
	}

	r.GET("/ws/realms/:realmId/events", auth.Middleware(), live.Events)
}

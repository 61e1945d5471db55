package live

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/TheFirstHero6/noah-game-sub000/auth"
	"github.com/TheFirstHero6/noah-game-sub000/models"
	"github.com/TheFirstHero6/noah-game-sub000/payloads"
	"github.com/TheFirstHero6/noah-game-sub000/turn"
)

var db *gorm.DB
var redisClient *redis.Client

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

var mu sync.Mutex
var subscribers = make(map[uint]map[*websocket.Conn]bool)

// Initialize starts the pub/sub pump that fans turn events out to the
// realm's websocket subscribers.
func Initialize(d *gorm.DB, r *redis.Client) {
	db = d
	redisClient = r

	if redisClient == nil {
		return
	}

	pubsub := redisClient.Subscribe(context.Background(), turn.EventChannel)
	go func() {
		for message := range pubsub.Channel() {
			var event turn.TurnEvent
			if err := json.Unmarshal([]byte(message.Payload), &event); err != nil {
				log.Warn().Err(err).Msg("Bad turn event payload")
				continue
			}

			dispatch(event)
		}
	}()
}

func dispatch(event turn.TurnEvent) {
	mu.Lock()
	defer mu.Unlock()

	for conn := range subscribers[event.RealmID] {
		if err := conn.WriteJSON(event); err != nil {
			log.Debug().Err(err).Msg("Dropping dead subscriber")
			conn.Close()
			delete(subscribers[event.RealmID], conn)
		}
	}
}

func subscribe(realmID uint, conn *websocket.Conn) {
	mu.Lock()
	defer mu.Unlock()

	if subscribers[realmID] == nil {
		subscribers[realmID] = make(map[*websocket.Conn]bool)
	}
	subscribers[realmID][conn] = true

	log.Debug().Uint("realm", realmID).Int("subscribers", len(subscribers[realmID])).Msg("Subscribed")
}

func unsubscribe(realmID uint, conn *websocket.Conn) {
	mu.Lock()
	defer mu.Unlock()

	delete(subscribers[realmID], conn)
}

// Events upgrades the request and streams turn events for the realm
// until the client goes away.
func Events(c *gin.Context) {
	realmID, err := strconv.ParseUint(c.Param("realmId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, payloads.ErrorResponse{Error: "invalid-realm-id"})
		return
	}

	user := auth.CurrentUser(c)
	if _, err := models.MembershipFor(c.Request.Context(), db, uint(realmID), user.ID); err != nil {
		payloads.SendError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}

	subscribe(uint(realmID), conn)
	defer func() {
		unsubscribe(uint(realmID), conn)
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Msg("Unexpected close")
			}
			return
		}
	}
}

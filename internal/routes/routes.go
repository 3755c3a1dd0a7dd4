package routes

import (
	"net/http"

	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"tour_ops/internal/controllers"
	"tour_ops/internal/middleware"
	"tour_ops/internal/services"
)

// Deps is everything the router needs to build its controllers.
type Deps struct {
	Entities       *services.EntityStore
	Routes         *services.RouteService
	Segments       *services.SegmentSequencer
	Logistics      *services.LogisticsAttacher
	Accommodations *services.AccommodationManager
	Transfers      *services.TransferManager
	Participants   *services.ParticipantAssignment
	Accounts       *services.AccountLedger
	Auth           *services.AuthService
	Tokens         *middleware.TokenIssuer
}

// NewDeps wires the service graph over one database handle.
func NewDeps(db *gorm.DB, tokens *middleware.TokenIssuer, defaultCurrency string) Deps {
	entities := services.NewEntityStore(db)
	segments := services.NewSegmentSequencer(db, entities)
	logistics := services.NewLogisticsAttacher(db, entities)
	transfers := services.NewTransferManager(db, entities)
	participants := services.NewParticipantAssignment(db, entities)
	return Deps{
		Entities:       entities,
		Routes:         services.NewRouteService(db, segments, logistics, transfers, defaultCurrency),
		Segments:       segments,
		Logistics:      logistics,
		Accommodations: services.NewAccommodationManager(db, entities, participants),
		Transfers:      transfers,
		Participants:   participants,
		Accounts:       services.NewAccountLedger(db, entities, defaultCurrency),
		Auth:           services.NewAuthService(db),
		Tokens:         tokens,
	}
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ginlog.SetLogger(ginlog.WithSkipPath([]string{"/healthz"})))
	r.Use(middleware.CORS())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	AuthRoutes(r, controllers.NewAuthController(d.Auth, d.Tokens))

	api := r.Group("/api")
	api.Use(d.Tokens.RequireAuth())
	EntityRoutes(api, d.Entities)
	ItineraryRoutes(api, d)
	AccountRoutes(api, controllers.NewAccountController(d.Accounts))

	return r
}

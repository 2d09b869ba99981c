package handler

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/mux"
)

// NewPublicRouter builds the gin router for the client-facing API. authMW
// resolves the caller for every /api/progression route.
func NewPublicRouter(h *ProgressionHandler, authMW gin.HandlerFunc, allowOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.RedirectTrailingSlash = false

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/api/quests/catalog", h.GetCatalog)

	progression := router.Group("/api/progression")
	progression.Use(authMW)
	{
		progression.GET("/me", h.GetMe)
		progression.GET("/quests", h.GetQuests)
		progression.GET("/next-playable", h.NextPlayable)
		progression.GET("/levels/:level/access", h.CheckAccess)
		progression.POST("/level-up", h.LevelUp)
		progression.POST("/levels/:level/complete", h.CompleteLevel)
		progression.POST("/xp", h.EarnXP)
	}

	return router
}

// NewInternalRouter builds the mux router for other services.
func NewInternalRouter(h *InternalHandler, serviceKeyMW mux.MiddlewareFunc, logging mux.MiddlewareFunc) *mux.Router {
	router := mux.NewRouter()
	router.Use(logging)

	router.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)

	internal := router.PathPrefix("/internal/progression").Subrouter()
	internal.Use(serviceKeyMW)
	internal.HandleFunc("/{userID}", h.GetProgression).Methods(http.MethodGet)
	internal.HandleFunc("/{userID}", h.PutProgression).Methods(http.MethodPut)
	internal.HandleFunc("/{userID}/xp", h.AddXP).Methods(http.MethodPost)
	internal.HandleFunc("/{userID}/level-up", h.LevelUp).Methods(http.MethodPost)

	return router
}

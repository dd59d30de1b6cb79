// Package api contains all endpoints available
package api

import (
	"context"
	"fmt"
	"time"

	"bitwise74/vidshare/aws"
	"bitwise74/vidshare/credential"
	"bitwise74/vidshare/middleware"
	"bitwise74/vidshare/service"
	"bitwise74/vidshare/store"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

var cacheStore = persist.NewMemoryStore(time.Minute)

type API struct {
	Router   *gin.Engine
	Clients  *aws.Clients
	Store    store.Store
	Intake   *service.Intake
	Reactor  *service.Reactor
	Download *service.Download
}

func NewRouter() (*API, error) {
	makeLogger()

	clients, err := aws.NewClients(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize AWS clients, %w", err)
	}

	st := store.NewDynamoStore(clients.DynamoDB, clients.Table)
	issuer := credential.NewIssuer(clients.Presign, clients.Bucket)

	a := &API{
		Clients: clients,
		Store:   st,
		Intake: &service.Intake{
			Store:  st,
			Issuer: issuer,
		},
		Reactor: &service.Reactor{
			Store: st,
			Dispatcher: &service.Dispatcher{
				Store:  st,
				Issuer: issuer,
				Mailer: service.GomailSender{},
			},
		},
		Download: &service.Download{
			Store:  st,
			Issuer: issuer,
		},
	}

	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:5173"},
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true

	rateLimiter := middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: 10,
		Burst:             20,
	})

	main := router.Group("/api")
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		main.HEAD("/heartbeat", a.Heartbeat)
	}

	uploads := main.Group("/uploads", middleware.BodySizeLimiter(1<<20))
	{
		// POST /api/uploads		-> Creates a pending upload and returns a write credential
		uploads.POST("", rateLimiter, a.UploadInitiate)

		// GET /api/uploads/recent	-> Lists recent uploads for a recipient
		uploads.GET("/recent", cacheFor(30), a.UploadsRecent)

		// GET /api/uploads/by-date	-> Lists uploads for a calendar day
		uploads.GET("/by-date", cacheFor(30), a.UploadsByDate)
	}

	downloads := main.Group("/downloads")
	{
		// GET /api/downloads/:fileID	-> Returns a read credential for a ready upload
		downloads.GET("/:fileID", rateLimiter, a.DownloadFile)
	}

	events := main.Group("/events", middleware.BodySizeLimiter(1<<20))
	{
		// POST /api/events/finalize	-> Webhook form of the object store finalize event
		events.POST("/finalize", a.EventsFinalize)
	}

	return a, nil
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	if lvl, err := zapcore.ParseLevel(viper.GetString("app.log_level")); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}

func cacheFor(sec int) gin.HandlerFunc {
	return cache.CacheByRequestURI(cacheStore, time.Second*time.Duration(sec))
}

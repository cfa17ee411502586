package middleware

import (
	"github.com/MicahParks/keyfunc/v3"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"github.com/carelens-health/carelens/backend/pkg/ai"
	"github.com/carelens-health/carelens/backend/pkg/engine"
	"github.com/carelens-health/carelens/backend/pkg/store"
)

type AppUser struct {
	Subject string
	Role    string
}

// App carries the long-lived collaborators every handler needs. Key is
// nil when no JWKS endpoint is configured.
type App struct {
	DBConn       *pgxpool.Pool
	Store        store.Storage
	Queue        *amqp091.Channel
	Key          *keyfunc.Keyfunc
	S3           *s3.Client
	AiClient     ai.Client
	Engine       *engine.Engine
	MasterAPIKey string
}

type AppContext struct {
	echo.Context
	App  *App
	User *AppUser
}

func AppContextMiddleware(
	db *pgxpool.Pool,
	st store.Storage,
	queue *amqp091.Channel,
	key *keyfunc.Keyfunc,
	s3 *s3.Client,
	aiClient ai.Client,
	eng *engine.Engine,
	masterAPIKey string,
) echo.MiddlewareFunc {
	app := &App{
		DBConn:       db,
		Store:        st,
		Queue:        queue,
		Key:          key,
		S3:           s3,
		AiClient:     aiClient,
		Engine:       eng,
		MasterAPIKey: masterAPIKey,
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app, nil}
			return next(cc)
		}
	}
}

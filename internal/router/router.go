package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/cinema-ticket-assistant/internal/handler"
)

// RegisterRoutes wires all endpoints onto the provided Echo instance.
// The health check lives at the root; the chat API lives under /v1
// behind the rate limiter so LLM-backed turns cannot be hammered.
func RegisterRoutes(e *echo.Echo, chat *handler.ChatHandler, rateLimit echo.MiddlewareFunc) {
	// Health endpoint for load balancers and monitoring systems.
	e.GET("/healthz", handler.Health)

	v1 := e.Group("/v1")
	if rateLimit != nil {
		v1.Use(rateLimit)
	}
	v1.POST("/chat", chat.Chat)
}

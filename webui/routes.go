package webui

import (
	fiber "github.com/gofiber/fiber/v2"
)

func (a *App) registerRoutes(webapp *fiber.App) {
	webapp.Get("/health", a.Health())

	v1 := webapp.Group("/api/v1")

	v1.Post("/chat", a.Chat())
	v1.Post("/chat/stream", a.ChatStream())

	v1.Get("/user/:user_id", a.GetUser())
	v1.Post("/user/:user_id/preferences", a.UpdatePreferences())

	v1.Get("/memories/:user_id", a.ListMemories())
	v1.Post("/memory/prune", a.PruneMemory())
}

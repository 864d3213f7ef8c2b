package public

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nferro/embeddingd/internal/app"
)

// Register wires up the OpenAI-compatible public API routes.
func Register(app *fiber.App, container *app.Container) {
	group := app.Group("/v1")
	handler := &embeddingsHandler{container: container}
	group.Post("/embeddings", handler.createEmbeddings)
}

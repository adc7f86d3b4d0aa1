package handler

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"articleapi/internal/service"
)

// StreamEvents is the live-viewer endpoint: a Server-Sent-Events stream of
// change notifications. The subscription is registered before the response
// body starts and torn down when the client goes away, which is detected by
// a failing event write or keep-alive flush.
func StreamEvents(store service.StoreService, keepAlive time.Duration) fiber.Handler {
	if keepAlive <= 0 {
		keepAlive = 15 * time.Second
	}
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, "text/event-stream")
		c.Set(fiber.HeaderCacheControl, "no-cache")
		c.Set(fiber.HeaderConnection, "keep-alive")
		// Tell buffering reverse proxies to pass events through.
		c.Set("X-Accel-Buffering", "no")

		sub := store.Subscribe()

		c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
			defer store.Unsubscribe(sub)

			ticker := time.NewTicker(keepAlive)
			defer ticker.Stop()

			for {
				select {
				case event, ok := <-sub.Events():
					if !ok {
						return
					}
					payload, err := json.Marshal(event)
					if err != nil {
						continue
					}
					if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
						return
					}
					if err := w.Flush(); err != nil {
						return
					}
				case <-ticker.C:
					// SSE comment line: ignored by clients, fails fast on a
					// dead connection.
					if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
						return
					}
					if err := w.Flush(); err != nil {
						return
					}
				}
			}
		}))
		return nil
	}
}

package httpapi

import (
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/config"
	httpopenapi "github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/http/openapi"
	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/model"
	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/obs"
	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/queue"
	"github.com/rokezojl-wq/Luxvia-shop-b-o-t/internal/store"
)

// App holds what the ops handlers read from.
type App struct {
	Cfg     config.Config
	Store   *store.Store
	Manager *queue.Manager
	closing atomic.Bool
	started time.Time
}

type productView struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Price        string `json:"price"`
	Currency     string `json:"currency,omitempty"`
	Stock        int64  `json:"stock"`
	InStock      bool   `json:"in_stock"`
	ChannelID    string `json:"channel_id"`
	MessageID    string `json:"message_id"`
	ImageURL     string `json:"image_url,omitempty"`
	DisplayColor string `json:"display_color,omitempty"`
}

func NewApp(cfg config.Config, st *store.Store, m *queue.Manager) *App {
	return &App{Cfg: cfg, Store: st, Manager: m, started: time.Now()}
}

// StartShutdown marks the app as draining and stops accepting commands.
func (a *App) StartShutdown() {
	a.closing.Store(true)
	a.Manager.CloseIntake()
}

func (a *App) view(p model.Product) productView {
	return productView{
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price.StringFixed(2),
		Currency:     a.Cfg.Currency,
		Stock:        p.Stock,
		InStock:      p.InStock(),
		ChannelID:    p.ChannelID,
		MessageID:    p.MessageID,
		ImageURL:     p.ImageURL,
		DisplayColor: p.DisplayColor,
	}
}

func (a *App) listProductsHandler(w http.ResponseWriter, _ *http.Request) {
	products := a.Store.List()
	out := make([]productView, 0, len(products))
	for _, p := range products {
		out = append(out, a.view(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *App) getProductHandler(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	p, ok := a.Store.Find(name)
	if !ok {
		obs.Debug(r.Context(), "product_lookup_miss", zap.String("name", name))
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
		return
	}
	writeJSON(w, http.StatusOK, a.view(p))
}

func (a *App) healthHandler(w http.ResponseWriter, _ *http.Request) {
	if a.closing.Load() || a.Manager.IsShuttingDown() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "shutting_down"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) metricsHandler(w http.ResponseWriter, _ *http.Request) {
	enq, proc, backlog, depth := a.Manager.QueueMetrics()
	writeJSON(w, http.StatusOK, map[string]any{
		"commands_enqueued":  enq,
		"commands_processed": proc,
		"backlog_size":       backlog,
		"queue_depth":        depth,
		"product_count":      a.Store.Len(),
		"uptime_sec":         time.Since(a.started).Seconds(),
	})
}

func (a *App) openapiHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(httpopenapi.YAML)
}

func (a *App) docsHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	html := `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Luxvia shop bot ops API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui'
      });
    </script>
  </body>
</html>`
	_, _ = w.Write([]byte(html))
}

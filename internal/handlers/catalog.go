package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jwebster45206/cell-commander/pkg/story"
)

type SceneInfo struct {
	ID              story.Scene `json:"id"`
	Name            string      `json:"name"`
	MapNode         bool        `json:"map_node"`
	AlwaysReachable bool        `json:"always_reachable"`
}

type CatalogResponse struct {
	Scenes        []SceneInfo       `json:"scenes"`
	Characters    []story.Character `json:"characters"`
	Items         []story.Item      `json:"items"`
	ShopItems     []string          `json:"shop_items"`
	QuizQuestions int               `json:"quiz_questions"`
	DiaryPages    int               `json:"diary_pages"`
}

// CatalogHandler serves the static content: who, what and where.
type CatalogHandler struct {
	catalog *story.Catalog
	logger  *slog.Logger
}

func NewCatalogHandler(catalog *story.Catalog, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// ServeHTTP handles GET /v1/catalog
func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
		return
	}

	scenes := make([]SceneInfo, 0, len(story.AllScenes))
	for _, s := range story.AllScenes {
		scenes = append(scenes, SceneInfo{
			ID:              s,
			Name:            s.DisplayName(),
			MapNode:         s.IsMapNode(),
			AlwaysReachable: s.AlwaysReachable(),
		})
	}

	writeJSON(w, h.logger, http.StatusOK, CatalogResponse{
		Scenes:        scenes,
		Characters:    h.catalog.Characters(),
		Items:         h.catalog.Items(),
		ShopItems:     h.catalog.ShopItems,
		QuizQuestions: h.catalog.QuizLen(),
		DiaryPages:    len(h.catalog.Diary()),
	})
}

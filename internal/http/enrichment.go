package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/books"
	"github.com/openshelf/openshelf/internal/covers"
	"github.com/openshelf/openshelf/internal/tasks"
)

// EnrichmentController queues metadata enrichment jobs and serves cached
// cover images.
type EnrichmentController struct {
	books      *books.Service
	taskClient *tasks.Client
	coverCache *covers.Cache
}

func NewEnrichmentController(booksService *books.Service, taskClient *tasks.Client, coverCache *covers.Cache) *EnrichmentController {
	return &EnrichmentController{
		books:      booksService,
		taskClient: taskClient,
		coverCache: coverCache,
	}
}

// EnrichBook queues a background metadata lookup for one book.
func (controller *EnrichmentController) EnrichBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	// Reject unknown IDs up front so the client gets a 404 instead of a
	// silently failing job
	if _, err := controller.books.Get(id); err != nil {
		respondAppError(c, err)
		return
	}

	if _, err := controller.taskClient.Add(tasks.EnrichBookTask{BookID: id}).Save(); err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Enrichment queued"})
}

// EnrichAll queues a sweep over every book missing metadata.
func (controller *EnrichmentController) EnrichAll(c *gin.Context) {
	if _, err := controller.taskClient.Add(tasks.EnrichAllBooksTask{}).Save(); err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Catalog enrichment queued"})
}

// Cover serves the locally cached cover image for a book, fetching it from
// the source URL on first access.
func (controller *EnrichmentController) Cover(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := controller.books.Get(id)
	if err != nil {
		respondAppError(c, err)
		return
	}

	if book.CoverImage == "" {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "book has no cover"})
		return
	}

	path, err := controller.coverCache.GetCover(c.Request.Context(), book.ID, book.CoverImage)
	if err != nil {
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "could not fetch cover"})
		return
	}

	c.File(path)
}

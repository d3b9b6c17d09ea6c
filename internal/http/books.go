package http

import (
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/books"
	bookrepo "github.com/openshelf/openshelf/internal/database/books"
	"github.com/openshelf/openshelf/internal/entities"
	"github.com/openshelf/openshelf/internal/exporters"
	"github.com/openshelf/openshelf/internal/lending"
)

type BooksController struct {
	books   *books.Service
	lending *lending.Service
	auth    *auth.Service
}

func NewBooksController(booksService *books.Service, lendingService *lending.Service, authService *auth.Service) *BooksController {
	return &BooksController{
		books:   booksService,
		lending: lendingService,
		auth:    authService,
	}
}

func (controller *BooksController) List(c *gin.Context) {
	filter := bookrepo.ListFilter{
		Search:         c.Query("search"),
		Status:         entities.BookStatus(c.Query("status")),
		SortBy:         c.Query("sortBy"),
		SortDesc:       c.Query("sortOrder") != "asc",
		IncludeDeleted: boolQuery(c, "includeDeleted"),
	}

	result, err := controller.books.List(filter)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (controller *BooksController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := controller.books.Get(id)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func (controller *BooksController) Create(c *gin.Context) {
	var input books.BookInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	book, err := controller.books.Create(input, auth.ActorID(c))
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": book.ID, "message": "Book added successfully"})
}

func (controller *BooksController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input books.BookInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	book, err := controller.books.Update(id, input, auth.ActorID(c))
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func (controller *BooksController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	err := controller.books.Delete(id, boolQuery(c, "permanent"), auth.ActorID(c))
	if err != nil {
		respondAppError(c, err)
		return
	}
	respondSuccess(c, "Book deleted successfully")
}

func (controller *BooksController) Restore(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := controller.books.Restore(id, auth.ActorID(c))
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

// DeleteAll wipes the catalog after re-verifying the admin's own password
// and verification code.
func (controller *BooksController) DeleteAll(c *gin.Context) {
	if !verifyReauth(c, controller.auth) {
		return
	}

	if err := controller.books.DeleteAll(auth.ActorID(c)); err != nil {
		respondAppError(c, err)
		return
	}
	respondSuccess(c, "All books deleted")
}

// Import accepts the raw upload body; format detection happens in the
// parser, not here.
func (controller *BooksController) Import(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondBadRequest(c, "could not read request body")
		return
	}

	result, err := controller.books.Import(payload, auth.ActorID(c))
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Export streams the catalog as a downloadable file. The CSV layout
// round-trips through the import endpoint.
func (controller *BooksController) Export(c *gin.Context) {
	exporter, err := exporters.ForFormat(c.Query("format"))
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	catalog, err := controller.books.List(bookrepo.ListFilter{SortBy: "title"})
	if err != nil {
		respondAppError(c, err)
		return
	}

	c.Header("Content-Type", exporter.ContentType())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="books.%s"`, exporter.FileExtension()))
	c.Status(http.StatusOK)

	if err := exporter.Export(c.Writer, catalog); err != nil {
		// Headers are gone; all we can do is log
		log.Printf("Export failed mid-stream: %v", err)
	}
}

func (controller *BooksController) Borrow(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	borrowing, err := controller.lending.Borrow(auth.GetUserID(c), id)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Book borrowed successfully", "borrowing": borrowing})
}

func (controller *BooksController) Return(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	borrowing, err := controller.lending.Return(auth.GetUserID(c), id)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Book returned successfully", "borrowing": borrowing})
}

func (controller *BooksController) Borrowed(c *gin.Context) {
	loans, err := controller.lending.ListBorrowed(auth.GetUserID(c))
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, loans)
}

// reauthRequest is the body every destructive bulk endpoint expects.
type reauthRequest struct {
	Password         string `json:"password"`
	VerificationCode string `json:"verificationCode"`
}

// verifyReauth re-checks the caller's own credentials. Returns false after
// writing the error response.
func verifyReauth(c *gin.Context, authService *auth.Service) bool {
	var req reauthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "password and verification code are required")
		return false
	}

	if err := authService.VerifyAdminCredentials(auth.GetUserID(c), req.Password, req.VerificationCode); err != nil {
		respondAppError(c, err)
		return false
	}
	return true
}

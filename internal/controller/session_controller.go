package controller

import (
	"io"
	"mime/multipart"
	"strings"

	"documind-be/internal/dto"
	"documind-be/internal/pkg/serverutils"
	"documind-be/internal/service"
	"documind-be/pkg/extract"

	"github.com/gofiber/fiber/v2"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	Ask(ctx *fiber.Ctx) error
	Summary(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	Reset(ctx *fiber.Ctx) error
	ListRecent(ctx *fiber.Ctx) error
}

type sessionController struct {
	conversationService service.IConversationService
}

func NewSessionController(conversationService service.IConversationService) ISessionController {
	return &sessionController{
		conversationService: conversationService,
	}
}

func (c *sessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/session/v1")
	h.Get("recent", c.ListRecent)
	h.Post(":id/document", c.Upload)
	h.Post(":id/ask", c.Ask)
	h.Get(":id/summary", c.Summary)
	h.Get(":id/history", c.History)
	h.Delete(":id", c.Reset)
}

// Upload accepts either a multipart file under the "document" field or a JSON
// body with the text inline.
func (c *sessionController) Upload(ctx *fiber.Ctx) error {
	sessionId := ctx.Params("id")

	if strings.HasPrefix(ctx.Get(fiber.HeaderContentType), "multipart/form-data") {
		fileHeader, err := ctx.FormFile("document")
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Document file is required"))
		}

		text, err := readDocumentFile(fileHeader)
		if err != nil {
			return err
		}

		res, err := c.conversationService.Upload(ctx.Context(), sessionId, fileHeader.Filename, text)
		if err != nil {
			return err
		}

		return ctx.JSON(serverutils.SuccessResponse("Document uploaded", res))
	}

	var req dto.UploadDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.conversationService.Upload(ctx.Context(), sessionId, req.DocumentName, req.Text)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Document uploaded", res))
}

func readDocumentFile(fileHeader *multipart.FileHeader) (string, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}

	return extract.FromUpload(fileHeader.Filename, data)
}

func (c *sessionController) Ask(ctx *fiber.Ctx) error {
	sessionId := ctx.Params("id")

	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.conversationService.Ask(ctx.Context(), sessionId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Question answered", res))
}

func (c *sessionController) Summary(ctx *fiber.Ctx) error {
	res, err := c.conversationService.Summary(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Session summary", res))
}

func (c *sessionController) History(ctx *fiber.Ctx) error {
	res, err := c.conversationService.History(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Conversation history", res))
}

func (c *sessionController) Reset(ctx *fiber.Ctx) error {
	if err := c.conversationService.Reset(ctx.Context(), ctx.Params("id")); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Session reset", nil))
}

func (c *sessionController) ListRecent(ctx *fiber.Ctx) error {
	limit := ctx.QueryInt("limit", 0)

	res, err := c.conversationService.ListRecent(ctx.Context(), limit)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Recent sessions", res))
}

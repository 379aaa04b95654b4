package controller

import (
	"documind-be/internal/dto"
	"documind-be/internal/pkg/serverutils"
	"documind-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChallengeController interface {
	RegisterRoutes(r fiber.Router)
	GenerateQuiz(ctx *fiber.Ctx) error
	Evaluate(ctx *fiber.Ctx) error
}

type challengeController struct {
	challengeService service.IChallengeService
}

func NewChallengeController(challengeService service.IChallengeService) IChallengeController {
	return &challengeController{
		challengeService: challengeService,
	}
}

func (c *challengeController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/challenge/v1")
	h.Post(":id/quiz", c.GenerateQuiz)
	h.Post(":id/evaluate", c.Evaluate)
}

func (c *challengeController) GenerateQuiz(ctx *fiber.Ctx) error {
	res, err := c.challengeService.GenerateQuiz(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Quiz generated", res))
}

func (c *challengeController) Evaluate(ctx *fiber.Ctx) error {
	sessionId := ctx.Params("id")

	var req dto.EvaluateAnswerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.challengeService.Evaluate(ctx.Context(), sessionId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Answer evaluated", res))
}

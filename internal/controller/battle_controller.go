package controller

import (
	"errors"

	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/model"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/service"
	"github.com/harshitsingh2007/GNDEC-LEARN-NOVA-sub001/internal/util"

	"github.com/gin-gonic/gin"
)

type BattleController struct {
	BattleService *service.BattleService
	Evaluator     *service.BattleEvaluator
	UserService   *service.UserService
}

func NewBattleController(battleService *service.BattleService, evaluator *service.BattleEvaluator, userService *service.UserService) *BattleController {
	return &BattleController{
		BattleService: battleService,
		Evaluator:     evaluator,
		UserService:   userService,
	}
}

// Create godoc
// @Summary Create a battle
// @Description Assembles a question set for the given topics and opens a battle waiting for an opponent
// @Tags battles
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.CreateBattleRequest true "Battle name and topic tags"
// @Success 201 {object} util.Response{data=object} "Created"
// @Failure 400 {object} util.Response "Invalid request"
// @Failure 422 {object} util.Response "No questions available for these topics"
// @Failure 500 {object} util.Response "Internal error"
// @Router /api/battles [post]
func (c *BattleController) Create(ctx *gin.Context) {
	var req service.CreateBattleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	battle, err := c.BattleService.CreateBattle(ctx.Request.Context(), claims.UserID, claims.Name, req)
	if err != nil {
		if errors.Is(err, util.ErrInsufficientContent) {
			util.UnprocessableEntity(ctx, "no questions available for these topics")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, gin.H{
		"id":       battle.ID,
		"joinCode": battle.JoinCode,
		"status":   battle.Status,
	})
}

type JoinBattleRequest struct {
	JoinCode string `json:"joinCode" binding:"required"`
}

// Join godoc
// @Summary Join a battle by code
// @Description Adds the caller as the second player, or returns current state on a rejoin
// @Tags battles
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body JoinBattleRequest true "Join code"
// @Success 200 {object} util.Response{data=service.BattleView} "OK"
// @Failure 404 {object} util.Response "Battle not found"
// @Failure 409 {object} util.Response "Battle full or already completed"
// @Router /api/battles/join [post]
func (c *BattleController) Join(ctx *gin.Context) {
	var req JoinBattleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.BattleService.JoinBattle(claims.UserID, claims.Name, req.JoinCode)
	if err != nil {
		c.writeBattleError(ctx, err)
		return
	}

	util.Success(ctx, view)
}

// Get godoc
// @Summary Battle state
// @Description Returns the battle with answer keys stripped from questions
// @Tags battles
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "Battle ID"
// @Success 200 {object} util.Response{data=service.BattleView} "OK"
// @Failure 404 {object} util.Response "Battle not found"
// @Router /api/battles/{id} [get]
func (c *BattleController) Get(ctx *gin.Context) {
	view, err := c.BattleService.GetBattleView(ctx.Param("id"))
	if err != nil {
		c.writeBattleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// List godoc
// @Summary List recent battles
// @Tags battles
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.BattleSummary} "OK"
// @Router /api/battles [get]
func (c *BattleController) List(ctx *gin.Context) {
	summaries, err := c.BattleService.ListBattles()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, summaries)
}

// SubmitAnswersRequest carries whatever the player answered before the timer
// ran out; an empty set is a valid zero-score submission.
type SubmitAnswersRequest struct {
	Answers []model.SubmittedAnswer `json:"answers"`
}

// Submit godoc
// @Summary Submit answers
// @Description Grades the caller's answers; the battle completes when both players have submitted
// @Tags battles
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "Battle ID"
// @Param   body body SubmitAnswersRequest true "Answers in submission order"
// @Success 200 {object} util.Response{data=service.EvaluationResult} "OK"
// @Failure 404 {object} util.Response "Battle or participant not found"
// @Failure 409 {object} util.Response "Already submitted"
// @Router /api/battles/{id}/submit [post]
func (c *BattleController) Submit(ctx *gin.Context) {
	var req SubmitAnswersRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.Evaluator.Evaluate(ctx.Request.Context(), ctx.Param("id"), claims.UserID, req.Answers)
	if err != nil {
		c.writeBattleError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// Analysis godoc
// @Summary Battle leaderboard and summary
// @Tags battles
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "Battle ID"
// @Success 200 {object} util.Response{data=service.BattleAnalysis} "OK"
// @Failure 404 {object} util.Response "Battle not found"
// @Router /api/battles/{id}/analysis [get]
func (c *BattleController) Analysis(ctx *gin.Context) {
	analysis, err := c.BattleService.GetAnalysis(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		c.writeBattleError(ctx, err)
		return
	}
	util.Success(ctx, analysis)
}

// History godoc
// @Summary Caller's battle history
// @Description Returns the caller's completed battles, newest first
// @Tags battles
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.BattleHistory} "OK"
// @Router /api/battles/history [get]
func (c *BattleController) History(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	entries, err := c.UserService.BattleHistory(claims.UserID, 100)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}

// writeBattleError maps battle engine errors onto HTTP statuses.
func (c *BattleController) writeBattleError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrBattleNotFound), errors.Is(err, util.ErrParticipantNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrBattleFull):
		util.Conflict(ctx, "battle already has two players")
	case errors.Is(err, util.ErrBattleClosed):
		util.Conflict(ctx, "battle is already completed")
	case errors.Is(err, util.ErrAlreadyEvaluated):
		util.Conflict(ctx, "answers already submitted")
	case errors.Is(err, util.ErrInsufficientContent):
		util.UnprocessableEntity(ctx, "no questions available for these topics")
	default:
		util.LogInternalError(ctx, err)
	}
}

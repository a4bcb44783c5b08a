package endpoints

import (
	"net/http"
	"strconv"

	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"mlstudio"
	"mlstudio/internal/api/handler/mapper"
	"mlstudio/internal/api/handler/middleware"
	"mlstudio/internal/api/handler/request"
	"mlstudio/internal/api/handler/response"
	"mlstudio/internal/api/service"
	"mlstudio/pkg"
)

type workflowHandler struct {
	workflowService *service.WorkflowService
	compileService  *service.CompileService
	runService      *service.RunService
	workflowMapper  mapper.WorkflowMapper
	config          mlstudio.AppConfig
	logger          zerolog.Logger
}

func newWorkflowHandler() *workflowHandler {
	return &workflowHandler{
		workflowService: service.NewWorkflowService(),
		compileService:  service.NewCompileService(),
		runService:      service.NewRunService(),
		workflowMapper:  mapper.NewWorkflowMapper(),
		config:          mlstudio.GetConfig(),
		logger:          mlstudio.Logger,
	}
}

func WorkflowHandler(router *graceful.Graceful) {
	h := newWorkflowHandler()

	routes := router.Group("/api/v1/workflows")
	routes.Use(middleware.AuthMiddleware(h.config))
	{
		routes.GET("", h.getAll)
		routes.GET("/:id", h.getByID)
		routes.POST("", h.create)
		routes.PUT("/:id", h.update)
		routes.PUT("/:id/graph", h.saveGraph)
		routes.DELETE("/:id", h.delete)

		routes.POST("/:id/compile", h.compile)
		routes.GET("/:id/script", h.script)
		routes.POST("/:id/run", h.run)
		routes.GET("/:id/runs", h.runs)
		routes.GET("/:id/runs/:runId", h.getRun)
	}
}

func (slf *workflowHandler) parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: "Invalid ID"})
		return 0, false
	}
	return uint(id), true
}

// checkAccess verifies the user can see the workflow; ownerOnly additionally
// requires ownership.
func (slf *workflowHandler) checkAccess(c *gin.Context, workflowID, userID uint, ownerOnly bool) bool {
	canAccess, isOwner, err := slf.workflowService.CanUserAccess(workflowID, userID)
	if err != nil {
		slf.logger.Error().Err(err).Uint("workflowID", workflowID).Msg("Failed to check workflow access")
		c.JSON(http.StatusNotFound, response.APIError{Message: "Workflow not found"})
		return false
	}

	if !canAccess {
		c.JSON(http.StatusForbidden, response.APIError{Message: "You don't have access to this workflow"})
		return false
	}
	if ownerOnly && !isOwner {
		c.JSON(http.StatusForbidden, response.APIError{Message: "Only the owner can perform this action"})
		return false
	}

	return true
}

// getAll returns summaries of all workflows visible to the current user
func (slf *workflowHandler) getAll(c *gin.Context) {
	userID, ok := pkg.GetUserID(c)
	if !ok {
		return
	}

	entities, err := slf.workflowService.FindAllForUser(userID)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Failed to get workflows")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to retrieve workflows"})
		return
	}

	summaries := make([]response.WorkflowSummaryDTO, 0, len(entities))
	for _, workflow := range entities {
		summaries = append(summaries, slf.workflowMapper.EntityToSummary(workflow))
	}
	c.JSON(http.StatusOK, summaries)
}

// getByID returns a workflow with its full graph
func (slf *workflowHandler) getByID(c *gin.Context) {
	userID, ok := pkg.GetUserID(c)
	if !ok {
		return
	}
	id, ok := slf.parseID(c, "id")
	if !ok {
		return
	}
	if !slf.checkAccess(c, id, userID, false) {
		return
	}

	workflow, err := slf.workflowService.FindByID(id)
	if err != nil {
		slf.logger.Error().Err(err).Uint("id", id).Msg("Failed to get workflow")
		c.JSON(http.StatusNotFound, response.APIError{Message: "Workflow not found"})
		return
	}

	resp, err := slf.workflowMapper.EntityToResponse(*workflow)
	if err != nil {
		slf.logger.Error().Err(err).Uint("id", id).Msg("Workflow has corrupt node data")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to load workflow"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// create creates a new workflow with an optional initial graph
func (slf *workflowHandler) create(c *gin.Context) {
	userID, ok := pkg.GetUserID(c)
	if !ok {
		return
	}

	var req request.CreateWorkflow
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		slf.logger.Error().Err(err).Msg("Failed to parse create workflow request")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	created, err := slf.workflowService.Create(req, userID)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Failed to create workflow")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to create workflow"})
		return
	}

	resp, err := slf.workflowMapper.EntityToResponse(*created)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to load created workflow"})
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// update patches a workflow's fields (not its graph)
func (slf *workflowHandler) update(c *gin.Context) {
	userID, ok := pkg.GetUserID(c)
	if !ok {
		return
	}
	id, ok := slf.parseID(c, "id")
	if !ok {
		return
	}
	if !slf.checkAccess(c, id, userID, true) {
		return
	}

	var req request.UpdateWorkflow
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		slf.logger.Error().Err(err).Msg("Failed to parse update workflow request")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	patch := map[string]any{}
	if req.Name != nil {
		patch["name"] = *req.Name
	}
	if req.Description != nil {
		patch["description"] = *req.Description
	}
	if req.Folder != nil {
		patch["folder"] = *req.Folder
	}
	if req.Visibility != nil {
		patch["visibility"] = *req.Visibility
	}
	if req.Active != nil {
		patch["active"] = *req.Active
	}

	updated, err := slf.workflowService.Update(id, patch)
	if err != nil {
		slf.logger.Error().Err(err).Uint("id", id).Msg("Failed to update workflow")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to update workflow"})
		return
	}

	resp, err := slf.workflowMapper.EntityToResponse(*updated)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to load updated workflow"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// saveGraph replaces the node/edge set of a workflow
func (slf *workflowHandler) saveGraph(c *gin.Context) {
	userID, ok := pkg.GetUserID(c)
	if !ok {
		return
	}
	id, ok := slf.parseID(c, "id")
	if !ok {
		return
	}
	if !slf.checkAccess(c, id, userID, true) {
		return
	}

	var req request.SaveGraph
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		slf.logger.Error().Err(err).Msg("Failed to parse save graph request")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	updated, err := slf.workflowService.SaveGraph(id, req)
	if err != nil {
		slf.logger.Error().Err(err).Uint("id", id).Msg("Failed to save graph")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	resp, err := slf.workflowMapper.EntityToResponse(*updated)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to load updated workflow"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// delete removes a workflow (only owner can delete)
func (slf *workflowHandler) delete(c *gin.Context) {
	userID, ok := pkg.GetUserID(c)
	if !ok {
		return
	}
	id, ok := slf.parseID(c, "id")
	if !ok {
		return
	}
	if !slf.checkAccess(c, id, userID, true) {
		return
	}

	if err := slf.workflowService.Delete(id); err != nil {
		slf.logger.Error().Err(err).Uint("id", id).Msg("Failed to delete workflow")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to delete workflow"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "deleted": true})
}

// compile turns the stored graph into a Python script
func (slf *workflowHandler) compile(c *gin.Context) {
	userID, ok := pkg.GetUserID(c)
	if !ok {
		return
	}
	id, ok := slf.parseID(c, "id")
	if !ok {
		return
	}
	if !slf.checkAccess(c, id, userID, false) {
		return
	}

	result, cached, err := slf.compileService.CompileWorkflow(id)
	if err != nil {
		slf.logger.Error().Err(err).Uint("id", id).Msg("Failed to compile workflow")
		c.JSON(http.StatusUnprocessableEntity, response.APIError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, response.CompileResponseDTO{
		Script:         result.Script,
		OrderedNodeIDs: result.OrderedNodeIDs,
		NodeErrors:     result.NodeErrors,
		Cached:         cached,
	})
}

// script returns only the generated Python source, as plain text
func (slf *workflowHandler) script(c *gin.Context) {
	userID, ok := pkg.GetUserID(c)
	if !ok {
		return
	}
	id, ok := slf.parseID(c, "id")
	if !ok {
		return
	}
	if !slf.checkAccess(c, id, userID, false) {
		return
	}

	result, _, err := slf.compileService.CompileWorkflow(id)
	if err != nil {
		slf.logger.Error().Err(err).Uint("id", id).Msg("Failed to compile workflow")
		c.JSON(http.StatusUnprocessableEntity, response.APIError{Message: err.Error()})
		return
	}

	c.Data(http.StatusOK, "text/x-python; charset=utf-8", []byte(result.Script))
}

// run compiles the workflow and starts executing it in the background
func (slf *workflowHandler) run(c *gin.Context) {
	userID, ok := pkg.GetUserID(c)
	if !ok {
		return
	}
	id, ok := slf.parseID(c, "id")
	if !ok {
		return
	}
	if !slf.checkAccess(c, id, userID, true) {
		return
	}

	run, err := slf.runService.Run(id)
	if err != nil {
		slf.logger.Error().Err(err).Uint("id", id).Msg("Failed to start run")
		c.JSON(http.StatusUnprocessableEntity, response.APIError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, slf.workflowMapper.EntityToRunResponse(*run))
}

// runs returns the run history of a workflow, newest first
func (slf *workflowHandler) runs(c *gin.Context) {
	userID, ok := pkg.GetUserID(c)
	if !ok {
		return
	}
	id, ok := slf.parseID(c, "id")
	if !ok {
		return
	}
	if !slf.checkAccess(c, id, userID, false) {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	runs, err := slf.runService.History(id, limit)
	if err != nil {
		slf.logger.Error().Err(err).Uint("id", id).Msg("Failed to get run history")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to retrieve runs"})
		return
	}

	dtos := make([]response.ScriptRunDTO, 0, len(runs))
	for _, run := range runs {
		dtos = append(dtos, slf.workflowMapper.EntityToRunResponse(run))
	}
	c.JSON(http.StatusOK, dtos)
}

// getRun returns a single run with its captured output
func (slf *workflowHandler) getRun(c *gin.Context) {
	userID, ok := pkg.GetUserID(c)
	if !ok {
		return
	}
	id, ok := slf.parseID(c, "id")
	if !ok {
		return
	}
	runID, ok := slf.parseID(c, "runId")
	if !ok {
		return
	}
	if !slf.checkAccess(c, id, userID, false) {
		return
	}

	run, err := slf.runService.FindByID(runID)
	if err != nil || run.WorkflowID != id {
		c.JSON(http.StatusNotFound, response.APIError{Message: "Run not found"})
		return
	}

	c.JSON(http.StatusOK, slf.workflowMapper.EntityToRunResponse(*run))
}

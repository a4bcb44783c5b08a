package service

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"mlstudio"
	"mlstudio/internal/api/handler/mapper"
	"mlstudio/internal/compile"
	"mlstudio/pkg"
)

const compileCacheTTL = 10 * time.Minute

type CompileService struct {
	workflowService *WorkflowService
	workflowMapper  mapper.WorkflowMapper
	compiler        *compile.Compiler
	logger          zerolog.Logger
}

func NewCompileService() *CompileService {
	return &CompileService{
		workflowService: NewWorkflowService(),
		workflowMapper:  mapper.NewWorkflowMapper(),
		compiler:        compile.NewCompiler(compile.DefaultRegistry, mlstudio.Logger),
		logger:          mlstudio.Logger,
	}
}

// CompileWorkflow compiles a stored workflow into a Python script. Results
// are cached in Redis keyed by a digest of the graph, so recompiling an
// unchanged workflow is a cache hit.
func (slf *CompileService) CompileWorkflow(id uint) (*compile.Result, bool, error) {
	workflow, err := slf.workflowService.FindByID(id)
	if err != nil {
		return nil, false, err
	}

	graph, err := slf.workflowMapper.EntityToGraph(*workflow)
	if err != nil {
		slf.logger.Error().Err(err).Uint("workflowId", id).Msg("Workflow graph is not loadable")
		return nil, false, err
	}

	return slf.CompileGraph(graph)
}

// CompileGraph compiles an in-memory graph, going through the same cache as
// CompileWorkflow. Used by the websocket live preview.
func (slf *CompileService) CompileGraph(graph *compile.Graph) (*compile.Result, bool, error) {
	cacheKey, err := slf.cacheKey(graph)
	if err == nil {
		var cached compile.Result
		if cacheErr := pkg.RedisGet(cacheKey, &cached); cacheErr == nil {
			return &cached, true, nil
		} else if !pkg.IsRedisNil(cacheErr) {
			slf.logger.Warn().Err(cacheErr).Msg("Compile cache read failed")
		}
	}

	result, err := slf.compiler.Compile(graph)
	if err != nil {
		return nil, false, err
	}

	if cacheKey != "" {
		if cacheErr := pkg.RedisSet(cacheKey, result, compileCacheTTL); cacheErr != nil {
			slf.logger.Warn().Err(cacheErr).Msg("Compile cache write failed")
		}
	}

	slf.logger.Info().
		Int("nodes", len(result.OrderedNodeIDs)).
		Int("nodeErrors", len(result.NodeErrors)).
		Msg("Workflow compiled")

	return result, false, nil
}

// cacheKey digests the canonical JSON form of the graph. json.Marshal sorts
// map keys, so equal graphs always produce equal keys.
func (slf *CompileService) cacheKey(graph *compile.Graph) (string, error) {
	data, err := json.Marshal(graph)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("compile:%s", hex.EncodeToString(sum[:])), nil
}

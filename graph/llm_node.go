package graph

import (
	"context"
	"time"

	"github.com/sygra-go/sygra/model"
	"github.com/sygra-go/sygra/types"
)

// ModelCaller is the subset of model.Client the graph runtime depends on,
// so node tests can substitute a fake without standing up a real Client.
type ModelCaller interface {
	Call(ctx context.Context, messages []types.Message, params model.GenerationParams) (*types.ModelResponse, error)
}

// LLMNode renders its prompt template against state, issues one Model
// Client call, and writes the response into its declared output keys,
// appending the turn to the state's chat history (spec §4.3 "LLM node").
type LLMNode struct {
	baseNode
	client      ModelCaller
	prompt      []PromptTemplate
	preProcess  ProcessHook
	postProcess ProcessHook
	responseKey string
}

// NewLLMNode builds an LLMNode, resolving its named pre/post hooks from
// registry. An unknown pre/post hook name is returned here as a
// configuration error; the model client is resolved by Build before
// NewLLMNode is called.
func NewLLMNode(name string, cfg NodeConfig, client ModelCaller, registry *Registry) (*LLMNode, error) {
	node := &LLMNode{
		baseNode: baseNode{name: name, nodeType: NodeLLM, outputKeys: cfg.OutputKeys},
		client:   client,
		prompt:   cfg.Prompt,
	}
	if len(cfg.OutputKeys) > 0 {
		node.responseKey = cfg.OutputKeys[0]
	}
	if cfg.PreProcess != "" {
		fn, ok := registry.hook(cfg.PreProcess)
		if !ok {
			return nil, types.NewError(types.ErrConfigInvalid, "unknown pre_process hook: "+cfg.PreProcess)
		}
		node.preProcess = fn
	}
	if cfg.PostProcess != "" {
		fn, ok := registry.hook(cfg.PostProcess)
		if !ok {
			return nil, types.NewError(types.ErrConfigInvalid, "unknown post_process hook: "+cfg.PostProcess)
		}
		node.postProcess = fn
	}
	return node, nil
}

func (n *LLMNode) Execute(ctx context.Context, state *types.State) error {
	if n.preProcess != nil {
		if err := n.preProcess(state); err != nil {
			return types.NewError(types.ErrLambdaFailed, "pre_process hook failed").WithCause(err)
		}
	}

	messages := renderPrompt(n.prompt, state)
	resp, err := n.client.Call(ctx, messages, model.GenerationParams{})
	if err != nil {
		return types.NewError(types.ErrRecordFatal, "model call failed for node "+n.name).WithCause(err)
	}

	state.AppendChatHistory(types.ChatEntry{
		NodeName:        n.name,
		RequestMessages: messages,
		Response:        resp,
		Timestamp:       time.Now(),
		PromptTokens:    model.EstimateTokens(messages),
	})

	if n.responseKey != "" {
		if err := n.checkOutputKeys(n.responseKey); err != nil {
			return err
		}
		state.Set(n.responseKey, resp.Text)
	}

	if n.postProcess != nil {
		if err := n.postProcess(state); err != nil {
			return types.NewError(types.ErrLambdaFailed, "post_process hook failed").WithCause(err)
		}
	}
	return nil
}

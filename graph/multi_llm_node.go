package graph

import (
	"context"
	"sync"
	"time"

	"github.com/sygra-go/sygra/model"
	"github.com/sygra-go/sygra/types"
)

// MultiLLMBranchResult is one entry of a MultiLLM node's array-valued
// output: either a successful response's text, or a placeholder error
// entry for a failed branch (spec §4.3 "Failures of individual branches
// are surfaced as placeholder error entries"; see DESIGN.md's Open
// Question decision 2 on this shape).
type MultiLLMBranchResult struct {
	Model string `json:"model"`
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

// MultiLLMNode issues N parallel calls to M configured models and writes
// an array-valued output key in stable configuration order (spec §4.3
// "MultiLLM node").
type MultiLLMNode struct {
	baseNode
	clients     []ModelCaller
	modelNames  []string
	prompt      []PromptTemplate
	responseKey string
}

// NewMultiLLMNode builds a MultiLLMNode over the given model clients, one
// per entry in cfg.Models, in the same order.
func NewMultiLLMNode(name string, cfg NodeConfig, clients []ModelCaller) (*MultiLLMNode, error) {
	node := &MultiLLMNode{
		baseNode:   baseNode{name: name, nodeType: NodeMultiLLM, outputKeys: cfg.OutputKeys},
		clients:    clients,
		modelNames: cfg.Models,
		prompt:     cfg.Prompt,
	}
	if len(cfg.OutputKeys) > 0 {
		node.responseKey = cfg.OutputKeys[0]
	}
	return node, nil
}

func (n *MultiLLMNode) Execute(ctx context.Context, state *types.State) error {
	messages := renderPrompt(n.prompt, state)
	results := make([]MultiLLMBranchResult, len(n.clients))
	entries := make([]types.ChatEntry, len(n.clients))

	var wg sync.WaitGroup
	var successCount int
	var mu sync.Mutex
	for i := range n.clients {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := n.clients[i].Call(ctx, messages, model.GenerationParams{})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				results[i] = MultiLLMBranchResult{Model: n.modelNames[i], Error: err.Error()}
				return
			}
			results[i] = MultiLLMBranchResult{Model: n.modelNames[i], Text: resp.Text}
			entries[i] = types.ChatEntry{
				NodeName:        n.name,
				RequestMessages: messages,
				Response:        resp,
				Timestamp:       time.Now(),
			}
			successCount++
		}(i)
	}
	wg.Wait()

	if successCount == 0 && len(n.clients) > 0 {
		return types.NewError(types.ErrRecordFatal, "all branches failed for multi_llm node "+n.name)
	}

	for _, e := range entries {
		if e.NodeName != "" {
			state.AppendChatHistory(e)
		}
	}

	if n.responseKey != "" {
		if err := n.checkOutputKeys(n.responseKey); err != nil {
			return err
		}
		state.Set(n.responseKey, results)
	}
	return nil
}

package agent

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskloop-ai/taskchat/internal/llm"
	"github.com/taskloop-ai/taskchat/internal/model"
	"github.com/taskloop-ai/taskchat/internal/store"
	"github.com/taskloop-ai/taskchat/internal/tools"
	"github.com/taskloop-ai/taskchat/pkg/logger"
)

// fakeClient returns scripted turns in order and records the requests it
// received.
type fakeClient struct {
	turns    []*llm.ModelTurn
	errs     []error
	requests []*llm.CompletionRequest
}

func (f *fakeClient) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.ModelTurn, error) {
	i := len(f.requests)
	f.requests = append(f.requests, req)
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i >= len(f.turns) {
		return nil, errors.New("unexpected extra model call")
	}
	return f.turns[i], nil
}

func (f *fakeClient) Name() string { return "fake" }

func newTestOrchestrator(t *testing.T, client llm.Client) (*Orchestrator, *store.Store, int64) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	user, err := st.CreateUser(context.Background(), "alice@example.com", "Alice", "hash")
	require.NoError(t, err)

	log, err := logger.New("error")
	require.NoError(t, err)

	return NewOrchestrator(client, tools.NewRegistry(st, log), log), st, user.ID
}

func TestRunWithoutToolCalls(t *testing.T) {
	client := &fakeClient{turns: []*llm.ModelTurn{
		{Content: "Hello! How can I help with your tasks?"},
	}}
	o, _, userID := newTestOrchestrator(t, client)

	result, err := o.Run(context.Background(), userID, "hi", nil)
	require.NoError(t, err)
	assert.Equal(t, "Hello! How can I help with your tasks?", result.Message)
	assert.Empty(t, result.ToolCalls)
	assert.False(t, result.Degraded)

	// Only one round-trip when the model requests no tools.
	require.Len(t, client.requests, 1)
	assert.Equal(t, llm.ToolChoiceAuto, client.requests[0].ToolChoice)
	assert.NotEmpty(t, client.requests[0].Tools)
	assert.Equal(t, string(model.RoleSystem), client.requests[0].Messages[0].Role)
}

func TestRunExecutesToolsInOrder(t *testing.T) {
	client := &fakeClient{turns: []*llm.ModelTurn{
		{ToolCalls: []llm.ToolCall{
			{ID: "call_1", Name: "create_task", ArgumentsJSON: `{"user_id": 42, "title": "buy milk"}`},
			{ID: "call_2", Name: "list_tasks", ArgumentsJSON: `{"user_id": 42}`},
		}},
		{Content: "Added task #1: buy milk. You now have 1 task."},
	}}
	o, st, userID := newTestOrchestrator(t, client)

	result, err := o.Run(context.Background(), userID, "add buy milk then show my tasks", nil)
	require.NoError(t, err)
	assert.False(t, result.Degraded)
	require.Len(t, result.ToolCalls, 2)
	assert.Equal(t, "create_task", result.ToolCalls[0].Tool)
	assert.Equal(t, "list_tasks", result.ToolCalls[1].Tool)
	assert.Equal(t, true, result.ToolCalls[0].Result["success"])
	assert.Equal(t, true, result.ToolCalls[1].Result["success"])

	// The second call sees the first call's effect: ordered, sequential
	// execution.
	assert.Equal(t, 1, result.ToolCalls[1].Result["count"])

	// The model said user 42; the task must belong to the authenticated
	// user anyway.
	assert.Equal(t, userID, result.ToolCalls[0].Arguments["user_id"])
	tasks, _, err := st.ListTasks(context.Background(), userID, nil, 10, 0)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "buy milk", tasks[0].Title)

	// Second round-trip carries the tool transcript and offers no tools.
	require.Len(t, client.requests, 2)
	second := client.requests[1]
	assert.Empty(t, second.Tools)
	assert.Equal(t, llm.ToolChoiceNone, second.ToolChoice)
	last := second.Messages[len(second.Messages)-1]
	assert.Equal(t, string(model.RoleTool), last.Role)
	assert.Equal(t, "call_2", last.ToolCallID)
}

func TestRunCreateThenCompleteSameTurn(t *testing.T) {
	client := &fakeClient{turns: []*llm.ModelTurn{
		{ToolCalls: []llm.ToolCall{
			{ID: "call_1", Name: "create_task", ArgumentsJSON: `{"title": "file taxes"}`},
			{ID: "call_2", Name: "complete_task", ArgumentsJSON: `{"task_id": 1}`},
		}},
		{Content: "Created and completed task #1."},
	}}
	o, st, userID := newTestOrchestrator(t, client)

	result, err := o.Run(context.Background(), userID, "add file taxes and mark it done", nil)
	require.NoError(t, err)
	require.Len(t, result.ToolCalls, 2)
	assert.Equal(t, true, result.ToolCalls[1].Result["success"])

	task, err := st.GetTask(context.Background(), 1, userID)
	require.NoError(t, err)
	assert.True(t, task.Completed)
}

func TestRunFirstCallFailure(t *testing.T) {
	client := &fakeClient{errs: []error{errors.New("rate limited")}}
	o, _, userID := newTestOrchestrator(t, client)

	result, err := o.Run(context.Background(), userID, "hi", nil)
	require.Error(t, err)
	assert.Nil(t, result)
}

func TestRunSecondCallFailureDegrades(t *testing.T) {
	client := &fakeClient{
		turns: []*llm.ModelTurn{
			{ToolCalls: []llm.ToolCall{
				{ID: "call_1", Name: "create_task", ArgumentsJSON: `{"title": "buy milk"}`},
			}},
		},
		errs: []error{nil, errors.New("timeout")},
	}
	o, st, userID := newTestOrchestrator(t, client)

	result, err := o.Run(context.Background(), userID, "add buy milk", nil)
	require.NoError(t, err)
	assert.True(t, result.Degraded)
	assert.Equal(t, degradedResponse, result.Message)
	require.Len(t, result.ToolCalls, 1)

	// The tool effect is committed even though the answer degraded.
	tasks, _, err := st.ListTasks(context.Background(), userID, nil, 10, 0)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestRunInvalidToolArguments(t *testing.T) {
	client := &fakeClient{turns: []*llm.ModelTurn{
		{ToolCalls: []llm.ToolCall{
			{ID: "call_1", Name: "create_task", ArgumentsJSON: `{not json`},
		}},
		{Content: "Something went wrong with that."},
	}}
	o, st, userID := newTestOrchestrator(t, client)

	result, err := o.Run(context.Background(), userID, "add something", nil)
	require.NoError(t, err)
	require.Len(t, result.ToolCalls, 1)
	assert.Equal(t, false, result.ToolCalls[0].Result["success"])
	assert.Equal(t, string(tools.ErrToolExecution), result.ToolCalls[0].Result["error"])

	tasks, _, err := st.ListTasks(context.Background(), userID, nil, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestRunReplaysHistory(t *testing.T) {
	client := &fakeClient{turns: []*llm.ModelTurn{
		{Content: "You asked me to add buy milk earlier."},
	}}
	o, _, userID := newTestOrchestrator(t, client)

	history := []model.Message{
		{Role: model.RoleUser, Content: "add buy milk"},
		{Role: model.RoleAssistant, Content: "Added task #1: buy milk"},
		{Role: model.RoleTool, Content: `{"success":true}`},
	}

	_, err := o.Run(context.Background(), userID, "what did I ask before?", history)
	require.NoError(t, err)

	msgs := client.requests[0].Messages
	// system + 2 replayed turns + new message; tool rows are not replayed.
	require.Len(t, msgs, 4)
	assert.Equal(t, "add buy milk", msgs[1].Content)
	assert.Equal(t, string(model.RoleAssistant), msgs[2].Role)
	assert.Equal(t, "what did I ask before?", msgs[3].Content)
}

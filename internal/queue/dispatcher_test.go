package queue_test

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/zonectl/internal/model"
	"github.com/slok/zonectl/internal/queue"
	"github.com/slok/zonectl/internal/queue/queuemock"
	"github.com/slok/zonectl/internal/storage/storagemock"
)

func TestDispatcher_DispatchOnce(t *testing.T) {
	startTask := model.Task{
		ID:        "task1",
		Host:      "host1",
		ZoneName:  "web01",
		Operation: model.OperationZoneStart,
		Priority:  model.TaskPriorityMedium,
		Status:    model.TaskStatusRunning,
	}

	tests := map[string]struct {
		registerFor model.Operation
		mockHandler func(m *queuemock.MockHandler)
		mockStorage func(m *storagemock.MockRepository)
		expClaimed  bool
		expErr      bool
	}{
		"an empty queue should claim nothing": {
			mockHandler: func(m *queuemock.MockHandler) {},
			mockStorage: func(m *storagemock.MockRepository) {
				m.On("ClaimNextTask", mock.Anything, "host1").Once().Return(nil, model.ErrNotFound)
			},
		},
		"a claimed task should run its handler and complete": {
			registerFor: model.OperationZoneStart,
			mockHandler: func(m *queuemock.MockHandler) {
				m.On("Handle", mock.Anything, startTask, nil).Once().
					Return(&queue.Result{Message: "zone web01 started"}, nil)
			},
			mockStorage: func(m *storagemock.MockRepository) {
				m.On("ClaimNextTask", mock.Anything, "host1").Once().Return(&startTask, nil)
				m.On("MarkTaskCompleted", mock.Anything, "task1", "zone web01 started", "").Once().Return(nil)
			},
			expClaimed: true,
		},
		"the decoded payload should reach the handler typed": {
			registerFor: model.OperationVNICDelete,
			mockHandler: func(m *queuemock.MockHandler) {
				m.On("Handle", mock.Anything, mock.Anything, model.VNICDeletePayload{Link: "vnic0"}).Once().
					Return(&queue.Result{Message: "vnic vnic0 deleted"}, nil)
			},
			mockStorage: func(m *storagemock.MockRepository) {
				m.On("ClaimNextTask", mock.Anything, "host1").Once().Return(&model.Task{
					ID:        "task2",
					Host:      "host1",
					Operation: model.OperationVNICDelete,
					Status:    model.TaskStatusRunning,
					Metadata:  json.RawMessage(`{"link": "vnic0"}`),
				}, nil)
				m.On("MarkTaskCompleted", mock.Anything, "task2", "vnic vnic0 deleted", "").Once().Return(nil)
			},
			expClaimed: true,
		},
		"cleanup problems of a successful handler should land on the task": {
			registerFor: model.OperationZoneStart,
			mockHandler: func(m *queuemock.MockHandler) {
				m.On("Handle", mock.Anything, startTask, nil).Once().
					Return(&queue.Result{Message: "zone web01 started", CleanupError: "could not update zone record"}, nil)
			},
			mockStorage: func(m *storagemock.MockRepository) {
				m.On("ClaimNextTask", mock.Anything, "host1").Once().Return(&startTask, nil)
				m.On("MarkTaskCompleted", mock.Anything, "task1", "zone web01 started", "could not update zone record").Once().Return(nil)
			},
			expClaimed: true,
		},
		"a handler error should fail the task and not the dispatcher": {
			registerFor: model.OperationZoneStart,
			mockHandler: func(m *queuemock.MockHandler) {
				m.On("Handle", mock.Anything, startTask, nil).Once().
					Return(nil, fmt.Errorf("could not boot zone: zone is already booted"))
			},
			mockStorage: func(m *storagemock.MockRepository) {
				m.On("ClaimNextTask", mock.Anything, "host1").Once().Return(&startTask, nil)
				m.On("MarkTaskFailed", mock.Anything, "task1", "could not boot zone: zone is already booted").Once().Return(nil)
			},
			expClaimed: true,
		},
		"a panicking handler should fail its task without taking the dispatcher down": {
			registerFor: model.OperationZoneStart,
			mockHandler: func(m *queuemock.MockHandler) {
				m.On("Handle", mock.Anything, startTask, nil).Once().
					Run(func(args mock.Arguments) { panic("boom") }).
					Return(nil, nil)
			},
			mockStorage: func(m *storagemock.MockRepository) {
				m.On("ClaimNextTask", mock.Anything, "host1").Once().Return(&startTask, nil)
				m.On("MarkTaskFailed", mock.Anything, "task1", mock.MatchedBy(func(reason string) bool {
					return strings.Contains(reason, "handler panicked") && strings.Contains(reason, "boom")
				})).Once().Return(nil)
			},
			expClaimed: true,
		},
		"a task with no registered handler should fail": {
			mockHandler: func(m *queuemock.MockHandler) {},
			mockStorage: func(m *storagemock.MockRepository) {
				m.On("ClaimNextTask", mock.Anything, "host1").Once().Return(&startTask, nil)
				m.On("MarkTaskFailed", mock.Anything, "task1", `no handler registered for operation "zone_start"`).Once().Return(nil)
			},
			expClaimed: true,
		},
		"undecodable metadata should fail the task before the handler runs": {
			registerFor: model.OperationVNICDelete,
			mockHandler: func(m *queuemock.MockHandler) {},
			mockStorage: func(m *storagemock.MockRepository) {
				m.On("ClaimNextTask", mock.Anything, "host1").Once().Return(&model.Task{
					ID:        "task3",
					Host:      "host1",
					Operation: model.OperationVNICDelete,
					Status:    model.TaskStatusRunning,
					Metadata:  json.RawMessage(`{"lower": "igb0"}`),
				}, nil)
				m.On("MarkTaskFailed", mock.Anything, "task3", mock.MatchedBy(func(reason string) bool {
					return strings.Contains(reason, "metadata")
				})).Once().Return(nil)
			},
			expClaimed: true,
		},
		"a claim failure should surface as a store error": {
			mockHandler: func(m *queuemock.MockHandler) {},
			mockStorage: func(m *storagemock.MockRepository) {
				m.On("ClaimNextTask", mock.Anything, "host1").Once().Return(nil, fmt.Errorf("database is locked"))
			},
			expErr: true,
		},
		"a failure to record completion should surface as a store error": {
			registerFor: model.OperationZoneStart,
			mockHandler: func(m *queuemock.MockHandler) {
				m.On("Handle", mock.Anything, startTask, nil).Once().
					Return(&queue.Result{Message: "zone web01 started"}, nil)
			},
			mockStorage: func(m *storagemock.MockRepository) {
				m.On("ClaimNextTask", mock.Anything, "host1").Once().Return(&startTask, nil)
				m.On("MarkTaskCompleted", mock.Anything, "task1", "zone web01 started", "").Once().
					Return(fmt.Errorf("database is locked"))
			},
			expClaimed: true,
			expErr:     true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			mHandler := &queuemock.MockHandler{}
			mStorage := &storagemock.MockRepository{}
			test.mockHandler(mHandler)
			test.mockStorage(mStorage)

			registry := queue.NewRegistry()
			if test.registerFor != "" {
				require.NoError(registry.Register(test.registerFor, mHandler))
			}

			dispatcher, err := queue.NewDispatcher(queue.DispatcherConfig{
				Host:     "host1",
				Storage:  mStorage,
				Registry: registry,
			})
			require.NoError(err)

			claimed, err := dispatcher.DispatchOnce(context.Background())

			if test.expErr {
				assert.Error(err)
			} else {
				assert.NoError(err)
			}
			assert.Equal(test.expClaimed, claimed)

			mHandler.AssertExpectations(t)
			mStorage.AssertExpectations(t)
		})
	}
}

func TestRegistry(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	registry := queue.NewRegistry()
	handler := queue.HandlerFunc(func(ctx context.Context, task model.Task, payload model.TaskPayload) (*queue.Result, error) {
		return &queue.Result{}, nil
	})

	require.NoError(registry.Register(model.OperationZoneStart, handler))

	_, ok := registry.Handler(model.OperationZoneStart)
	assert.True(ok)

	_, ok = registry.Handler(model.OperationZoneStop)
	assert.False(ok)

	err := registry.Register(model.OperationZoneStart, handler)
	assert.Error(err)

	err = registry.Register(model.Operation("zone_explode"), handler)
	assert.Error(err)
}

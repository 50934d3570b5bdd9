package zone_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/slok/zonectl/internal/discovery"
	"github.com/slok/zonectl/internal/model"
	"github.com/slok/zonectl/internal/queue"
)

func TestHandlers_Discover(t *testing.T) {
	task := model.Task{
		ID:        "task1",
		Host:      "host1",
		Operation: model.OperationZoneDiscover,
	}

	tests := map[string]struct {
		mock      func(m *handlerMocks)
		expResult *queue.Result
		expErr    bool
	}{
		"A discovery pass should report the zone and network counts.": {
			mock: func(m *handlerMocks) {
				m.reconciler.On("Run", mock.Anything).Once().Return(&discovery.Result{Discovered: 1, Orphaned: 2, Refreshed: 3}, nil)
				m.reconciler.On("ScanNetworks", mock.Anything).Once().Return(&discovery.NetworkResult{Interfaces: 4, UsageSamples: 4, Addresses: 6}, nil)
			},
			expResult: &queue.Result{Message: "1 zones discovered, 2 newly orphaned, 3 refreshed, 4 links scanned"},
		},

		"A reconciliation failure should fail the task.": {
			mock: func(m *handlerMocks) {
				m.reconciler.On("Run", mock.Anything).Once().Return(nil, errors.New("could not enumerate live zones: zoneadm timed out"))
			},
			expErr: true,
		},

		"A network scan failure should not undo the zone reconciliation.": {
			mock: func(m *handlerMocks) {
				m.reconciler.On("Run", mock.Anything).Once().Return(&discovery.Result{Refreshed: 5}, nil)
				m.reconciler.On("ScanNetworks", mock.Anything).Once().Return(nil, errors.New("dladm show-link failed"))
			},
			expResult: &queue.Result{
				Message:      "0 zones discovered, 0 newly orphaned, 5 refreshed",
				CleanupError: "network scan: dladm show-link failed",
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			m := newHandlerMocks()
			test.mock(m)

			result, err := m.handlers(t).Discover(context.TODO(), task, nil)

			if test.expErr {
				assert.Error(err)
			} else if assert.NoError(err) {
				assert.Equal(test.expResult, result)
			}
			m.assertExpectations(t)
		})
	}
}

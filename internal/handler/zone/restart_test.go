package zone_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/slok/zonectl/internal/model"
	"github.com/slok/zonectl/internal/queue"
	"github.com/slok/zonectl/internal/zoneadm"
)

func TestHandlers_Restart(t *testing.T) {
	task := model.Task{
		ID:        "task1",
		Host:      "host1",
		ZoneName:  "web01",
		Operation: model.OperationZoneRestart,
	}
	listing := []zoneadm.ZoneInfo{
		{ID: 7, Name: "web01", State: model.ZoneStatusRunning, Zonepath: "/rpool/zones/web01/path"},
	}

	tests := map[string]struct {
		mock      func(m *handlerMocks)
		expResult *queue.Result
		expErr    bool
	}{
		"A restart should stop the zone, settle and boot it again.": {
			mock: func(m *handlerMocks) {
				m.zones.On("Shutdown", mock.Anything, "web01").Once().Return(nil)
				m.console.On("Terminate", mock.Anything, "web01").Once().Return(nil)
				m.zones.On("Boot", mock.Anything, "web01").Once().Return(nil)
				m.zones.On("List", mock.Anything).Once().Return(listing, nil)
				m.zones.On("FixZonepathPermissions", mock.Anything, "/rpool/zones/web01/path").Once().Return(nil)
				m.storage.On("GetZone", mock.Anything, "host1", "web01").Once().Return(&model.Zone{Name: "web01", Host: "host1", Status: model.ZoneStatusRunning}, nil)
				m.storage.On("UpdateZone", mock.Anything, mock.MatchedBy(func(z model.Zone) bool {
					return z.Status == model.ZoneStatusRunning
				})).Once().Return(nil)
			},
			expResult: &queue.Result{Message: `zone "web01" restarted`},
		},

		"A stop failure should abort the restart before any boot attempt.": {
			mock: func(m *handlerMocks) {
				m.zones.On("Shutdown", mock.Anything, "web01").Once().Return(errors.New("shutdown timed out"))
				m.zones.On("Halt", mock.Anything, "web01").Once().Return(errors.New("zone is busy"))
			},
			expErr: true,
		},

		"A boot failure after the stop should fail the task.": {
			mock: func(m *handlerMocks) {
				m.zones.On("Shutdown", mock.Anything, "web01").Once().Return(nil)
				m.console.On("Terminate", mock.Anything, "web01").Once().Return(nil)
				m.zones.On("Boot", mock.Anything, "web01").Once().Return(errors.New("no such zone installed"))
			},
			expErr: true,
		},

		"Console and record problems should stack on the cleanup note.": {
			mock: func(m *handlerMocks) {
				m.zones.On("Shutdown", mock.Anything, "web01").Once().Return(nil)
				m.console.On("Terminate", mock.Anything, "web01").Once().Return(errors.New("no such process"))
				m.zones.On("Boot", mock.Anything, "web01").Once().Return(nil)
				m.zones.On("List", mock.Anything).Once().Return(listing, nil)
				m.zones.On("FixZonepathPermissions", mock.Anything, "/rpool/zones/web01/path").Once().Return(nil)
				m.storage.On("GetZone", mock.Anything, "host1", "web01").Once().Return(nil, errors.New("database is locked"))
			},
			expResult: &queue.Result{
				Message: `zone "web01" restarted`,
				CleanupError: `2 errors occurred:
	* could not terminate the console session: no such process
	* could not load the zone record: database is locked

`,
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			m := newHandlerMocks()
			test.mock(m)

			result, err := m.handlers(t).Restart(context.TODO(), task, nil)

			if test.expErr {
				assert.Error(err)
			} else if assert.NoError(err) {
				assert.Equal(test.expResult, result)
			}
			m.assertExpectations(t)
		})
	}
}

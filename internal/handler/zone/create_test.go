package zone_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/slok/zonectl/internal/model"
	"github.com/slok/zonectl/internal/queue"
)

func TestHandlers_Create(t *testing.T) {
	task := model.Task{
		ID:        "task1",
		Host:      "host1",
		ZoneName:  "web01",
		Operation: model.OperationZoneCreate,
	}
	config := model.ZoneConfiguration{
		Zonepath: "/rpool/zones/web01/path",
		Brand:    "lipkg",
	}

	tests := map[string]struct {
		payload   model.TaskPayload
		mock      func(m *handlerMocks)
		expResult *queue.Result
		expErr    bool
	}{
		"A configure only payload should store a configured record.": {
			payload: model.ZoneCreatePayload{Configuration: config},
			mock: func(m *handlerMocks) {
				m.zones.On("Configure", mock.Anything, "web01", config).Once().Return(nil)
				m.storage.On("CreateZone", mock.Anything, mock.MatchedBy(func(z model.Zone) bool {
					return z.Name == "web01" &&
						z.Host == "host1" &&
						z.Status == model.ZoneStatusConfigured &&
						z.Brand == "lipkg" &&
						z.Configuration.Zonepath == "/rpool/zones/web01/path" &&
						!z.AutoDiscovered &&
						!z.LastSeen.IsZero()
				})).Once().Return(nil)
			},
			expResult: &queue.Result{Message: `zone "web01" created (configured)`},
		},

		"An install and boot payload should leave the zone running with fixed permissions.": {
			payload: model.ZoneCreatePayload{Configuration: config, Install: true, Boot: true},
			mock: func(m *handlerMocks) {
				m.zones.On("Configure", mock.Anything, "web01", config).Once().Return(nil)
				m.zones.On("Install", mock.Anything, "web01").Once().Return(nil)
				m.zones.On("Boot", mock.Anything, "web01").Once().Return(nil)
				m.zones.On("FixZonepathPermissions", mock.Anything, "/rpool/zones/web01/path").Once().Return(nil)
				m.storage.On("CreateZone", mock.Anything, mock.MatchedBy(func(z model.Zone) bool {
					return z.Status == model.ZoneStatusRunning
				})).Once().Return(nil)
			},
			expResult: &queue.Result{Message: `zone "web01" created (running)`},
		},

		"An install failure should abort before booting or storing anything.": {
			payload: model.ZoneCreatePayload{Configuration: config, Install: true, Boot: true},
			mock: func(m *handlerMocks) {
				m.zones.On("Configure", mock.Anything, "web01", config).Once().Return(nil)
				m.zones.On("Install", mock.Anything, "web01").Once().Return(errors.New("pkg repository unreachable"))
			},
			expErr: true,
		},

		"A record left behind by discovery should be refreshed in place.": {
			payload: model.ZoneCreatePayload{Configuration: config},
			mock: func(m *handlerMocks) {
				m.zones.On("Configure", mock.Anything, "web01", config).Once().Return(nil)
				m.storage.On("CreateZone", mock.Anything, mock.Anything).Once().Return(model.ErrAlreadyExists)
				m.storage.On("UpdateZone", mock.Anything, mock.MatchedBy(func(z model.Zone) bool {
					return z.Name == "web01" && z.Status == model.ZoneStatusConfigured
				})).Once().Return(nil)
			},
			expResult: &queue.Result{Message: `zone "web01" created (configured)`},
		},

		"A store failure should surface as a cleanup problem, not undo the zone.": {
			payload: model.ZoneCreatePayload{Configuration: config},
			mock: func(m *handlerMocks) {
				m.zones.On("Configure", mock.Anything, "web01", config).Once().Return(nil)
				m.storage.On("CreateZone", mock.Anything, mock.Anything).Once().Return(errors.New("database is locked"))
			},
			expResult: &queue.Result{
				Message:      `zone "web01" created (configured)`,
				CleanupError: "could not persist the zone record: database is locked",
			},
		},

		"An unexpected payload type should fail the task.": {
			payload: nil,
			mock:    func(m *handlerMocks) {},
			expErr:  true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			m := newHandlerMocks()
			test.mock(m)

			result, err := m.handlers(t).Create(context.TODO(), task, test.payload)

			if test.expErr {
				assert.Error(err)
			} else if assert.NoError(err) {
				assert.Equal(test.expResult, result)
			}
			m.assertExpectations(t)
		})
	}
}

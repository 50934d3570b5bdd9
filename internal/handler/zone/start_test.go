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

func TestHandlers_Start(t *testing.T) {
	task := model.Task{
		ID:        "task1",
		Host:      "host1",
		ZoneName:  "web01",
		Operation: model.OperationZoneStart,
	}
	listing := []zoneadm.ZoneInfo{
		{ID: 1, Name: "db01", State: model.ZoneStatusRunning, Zonepath: "/rpool/zones/db01/path"},
		{ID: 7, Name: "web01", State: model.ZoneStatusRunning, Zonepath: "/rpool/zones/web01/path"},
	}

	tests := map[string]struct {
		mock      func(m *handlerMocks)
		expResult *queue.Result
		expErr    bool
	}{
		"Booting a zone should fix its zonepath permissions and mark the record running.": {
			mock: func(m *handlerMocks) {
				m.zones.On("Boot", mock.Anything, "web01").Once().Return(nil)
				m.zones.On("List", mock.Anything).Once().Return(listing, nil)
				m.zones.On("FixZonepathPermissions", mock.Anything, "/rpool/zones/web01/path").Once().Return(nil)
				m.storage.On("GetZone", mock.Anything, "host1", "web01").Once().Return(&model.Zone{Name: "web01", Host: "host1", Status: model.ZoneStatusInstalled}, nil)
				m.storage.On("UpdateZone", mock.Anything, mock.MatchedBy(func(z model.Zone) bool {
					return z.Status == model.ZoneStatusRunning && !z.LastSeen.IsZero()
				})).Once().Return(nil)
			},
			expResult: &queue.Result{Message: `zone "web01" started`},
		},

		"A boot failure should fail the task.": {
			mock: func(m *handlerMocks) {
				m.zones.On("Boot", mock.Anything, "web01").Once().Return(errors.New("zone is already booted"))
			},
			expErr: true,
		},

		"A zone missing from the live listing after boot should fail the task.": {
			mock: func(m *handlerMocks) {
				m.zones.On("Boot", mock.Anything, "web01").Once().Return(nil)
				m.zones.On("List", mock.Anything).Once().Return(listing[:1], nil)
			},
			expErr: true,
		},

		"A permissions failure should fail the start.": {
			mock: func(m *handlerMocks) {
				m.zones.On("Boot", mock.Anything, "web01").Once().Return(nil)
				m.zones.On("List", mock.Anything).Once().Return(listing, nil)
				m.zones.On("FixZonepathPermissions", mock.Anything, "/rpool/zones/web01/path").Once().Return(errors.New("chmod failed"))
			},
			expErr: true,
		},

		"A record refresh failure should land on the cleanup note, the zone is up.": {
			mock: func(m *handlerMocks) {
				m.zones.On("Boot", mock.Anything, "web01").Once().Return(nil)
				m.zones.On("List", mock.Anything).Once().Return(listing, nil)
				m.zones.On("FixZonepathPermissions", mock.Anything, "/rpool/zones/web01/path").Once().Return(nil)
				m.storage.On("GetZone", mock.Anything, "host1", "web01").Once().Return(nil, errors.New("database is locked"))
			},
			expResult: &queue.Result{
				Message:      `zone "web01" started`,
				CleanupError: "could not load the zone record: database is locked",
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			m := newHandlerMocks()
			test.mock(m)

			result, err := m.handlers(t).Start(context.TODO(), task, nil)

			if test.expErr {
				assert.Error(err)
			} else if assert.NoError(err) {
				assert.Equal(test.expResult, result)
			}
			m.assertExpectations(t)
		})
	}
}

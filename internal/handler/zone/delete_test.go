package zone_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/slok/zonectl/internal/model"
	"github.com/slok/zonectl/internal/queue"
	"github.com/slok/zonectl/internal/reclaim"
)

func TestHandlers_Delete(t *testing.T) {
	task := model.Task{
		ID:        "task1",
		Host:      "host1",
		ZoneName:  "web01",
		Operation: model.OperationZoneDelete,
	}
	config := model.ZoneConfiguration{
		Zonepath: "/rpool/zones/web01/path",
		Brand:    "lipkg",
		Datasets: []string{"tank/shared/data"},
	}
	plan := &reclaim.Plan{
		Zone:       "web01",
		Candidates: []string{"rpool/zones/web01", "rpool/zones/web01/vol"},
		Protected:  []string{},
	}

	// The live teardown of a running zone.
	liveTeardown := func(m *handlerMocks) {
		m.zones.On("State", mock.Anything, "web01").Once().Return(model.ZoneStatusRunning, nil)
		m.console.On("Terminate", mock.Anything, "web01").Once().Return(nil)
		m.zones.On("Shutdown", mock.Anything, "web01").Once().Return(nil)
		m.zones.On("Uninstall", mock.Anything, "web01").Once().Return(nil)
		m.zones.On("Unconfigure", mock.Anything, "web01").Once().Return(nil)
	}

	// The record sweeps every successful delete ends with.
	recordSweeps := func(m *handlerMocks, cancelled int) {
		m.storage.On("DeleteZone", mock.Anything, "host1", "web01").Once().Return(nil)
		m.storage.On("DeleteUsageByLinkPrefix", mock.Anything, "host1", "web01_").Once().Return(nil)
		m.storage.On("DeleteIPAddressesByLinkPrefix", mock.Anything, "host1", "web01_").Once().Return(nil)
		m.storage.On("CancelPendingTasksByZone", mock.Anything, "host1", "web01").Once().Return(cancelled, nil)
	}

	tests := map[string]struct {
		payload   model.TaskPayload
		mock      func(m *handlerMocks)
		expResult *queue.Result
		expErr    bool
	}{
		"Deleting a zone with dataset removal should destroy its unshared datasets.": {
			payload: model.ZoneDeletePayload{RemoveDatasets: true},
			mock: func(m *handlerMocks) {
				m.storage.On("GetZone", mock.Anything, "host1", "web01").Once().Return(&model.Zone{Name: "web01", Host: "host1", Configuration: config}, nil)
				m.analyzer.On("Plan", mock.Anything, "web01", config).Once().Return(plan, nil)
				liveTeardown(m)
				m.analyzer.On("Destroy", mock.Anything, plan).Once().Return(&reclaim.Result{
					Destroyed: []string{"rpool/zones/web01", "rpool/zones/web01/vol"},
				}, nil)
				m.storage.On("ListInterfacesByZone", mock.Anything, "host1", "web01").Once().Return([]model.NetworkInterface{}, nil)
				recordSweeps(m, 0)
			},
			expResult: &queue.Result{Message: `zone "web01" deleted, 2 datasets destroyed, 0 kept for other zones`},
		},

		"Datasets shared with other zones should be kept and the task should still succeed.": {
			payload: model.ZoneDeletePayload{RemoveDatasets: true},
			mock: func(m *handlerMocks) {
				m.storage.On("GetZone", mock.Anything, "host1", "web01").Once().Return(&model.Zone{Name: "web01", Host: "host1", Configuration: config}, nil)
				m.analyzer.On("Plan", mock.Anything, "web01", config).Once().Return(plan, nil)
				liveTeardown(m)
				m.analyzer.On("Destroy", mock.Anything, plan).Once().Return(&reclaim.Result{
					Destroyed: []string{"rpool/zones/web01"},
					Skipped:   []string{"tank/shared/data"},
				}, nil)
				m.storage.On("ListInterfacesByZone", mock.Anything, "host1", "web01").Once().Return([]model.NetworkInterface{}, nil)
				recordSweeps(m, 0)
			},
			expResult: &queue.Result{Message: `zone "web01" deleted, 1 datasets destroyed, 1 kept for other zones`},
		},

		"A zone with no stored record should recover its configuration from the live system first.": {
			payload: model.ZoneDeletePayload{RemoveDatasets: true},
			mock: func(m *handlerMocks) {
				m.storage.On("GetZone", mock.Anything, "host1", "web01").Once().Return(nil, model.ErrNotFound)
				m.zones.On("Export", mock.Anything, "web01").Once().Return(&config, nil)
				m.zones.On("State", mock.Anything, "web01").Twice().Return(model.ZoneStatusRunning, nil)
				m.storage.On("CreateZone", mock.Anything, mock.MatchedBy(func(z model.Zone) bool {
					return z.Name == "web01" &&
						z.AutoDiscovered &&
						z.Status == model.ZoneStatusRunning &&
						z.Configuration.Zonepath == "/rpool/zones/web01/path" &&
						!z.LastSeen.IsZero()
				})).Once().Return(nil)
				m.analyzer.On("Plan", mock.Anything, "web01", config).Once().Return(plan, nil)
				m.console.On("Terminate", mock.Anything, "web01").Once().Return(nil)
				m.zones.On("Shutdown", mock.Anything, "web01").Once().Return(nil)
				m.zones.On("Uninstall", mock.Anything, "web01").Once().Return(nil)
				m.zones.On("Unconfigure", mock.Anything, "web01").Once().Return(nil)
				m.analyzer.On("Destroy", mock.Anything, plan).Once().Return(&reclaim.Result{
					Destroyed: []string{"rpool/zones/web01", "rpool/zones/web01/vol"},
				}, nil)
				m.storage.On("ListInterfacesByZone", mock.Anything, "host1", "web01").Once().Return([]model.NetworkInterface{}, nil)
				recordSweeps(m, 0)
			},
			expResult: &queue.Result{Message: `zone "web01" deleted, 2 datasets destroyed, 0 kept for other zones`},
		},

		"Dataset destroy failures should fail the task even though the zone is gone.": {
			payload: model.ZoneDeletePayload{RemoveDatasets: true},
			mock: func(m *handlerMocks) {
				m.storage.On("GetZone", mock.Anything, "host1", "web01").Once().Return(&model.Zone{Name: "web01", Host: "host1", Configuration: config}, nil)
				m.analyzer.On("Plan", mock.Anything, "web01", config).Once().Return(plan, nil)
				liveTeardown(m)
				m.analyzer.On("Destroy", mock.Anything, plan).Once().Return(&reclaim.Result{}, errors.New("dataset is busy"))
			},
			expErr: true,
		},

		"A dataset analysis failure should abort before the zone is touched.": {
			payload: model.ZoneDeletePayload{RemoveDatasets: true},
			mock: func(m *handlerMocks) {
				m.storage.On("GetZone", mock.Anything, "host1", "web01").Once().Return(&model.Zone{Name: "web01", Host: "host1", Configuration: config}, nil)
				m.analyzer.On("Plan", mock.Anything, "web01", config).Once().Return(nil, errors.New("could not list the datasets of zone \"db01\": zfs timed out"))
			},
			expErr: true,
		},

		"Removing the network should delete the VNICs and keep the shared fabric.": {
			payload: model.ZoneDeletePayload{RemoveNetwork: true},
			mock: func(m *handlerMocks) {
				m.zones.On("State", mock.Anything, "web01").Once().Return(model.ZoneStatusInstalled, nil)
				m.console.On("Terminate", mock.Anything, "web01").Once().Return(nil)
				m.zones.On("Uninstall", mock.Anything, "web01").Once().Return(nil)
				m.zones.On("Unconfigure", mock.Anything, "web01").Once().Return(nil)
				m.storage.On("ListInterfacesByZone", mock.Anything, "host1", "web01").Once().Return([]model.NetworkInterface{
					{Host: "host1", Link: "web01_net0", Class: model.LinkClassVNIC, Zone: "web01"},
					{Host: "host1", Link: "stub0", Class: model.LinkClassEtherstub, Zone: "web01"},
				}, nil)
				m.storage.On("DeleteIPAddressesByLink", mock.Anything, "host1", "web01_net0").Once().Return(nil)
				m.links.On("DeleteVNIC", mock.Anything, "web01_net0", false).Once().Return(nil)
				m.storage.On("DeleteInterface", mock.Anything, "host1", "web01_net0", model.LinkClassVNIC).Once().Return(nil)
				m.storage.On("DeleteUsageByLink", mock.Anything, "host1", "web01_net0").Once().Return(nil)
				m.storage.On("DeleteIPAddressesByLink", mock.Anything, "host1", "stub0").Once().Return(nil)
				m.storage.On("AssignInterfaceZone", mock.Anything, "host1", "stub0", model.LinkClassEtherstub, "").Once().Return(nil)
				recordSweeps(m, 2)
			},
			expResult: &queue.Result{Message: `zone "web01" deleted, 2 pending tasks cancelled`},
		},

		"Without network removal the interfaces should only lose their association.": {
			payload: model.ZoneDeletePayload{},
			mock: func(m *handlerMocks) {
				m.zones.On("State", mock.Anything, "web01").Once().Return(model.ZoneStatus(""), model.ErrNotFound)
				m.storage.On("ListInterfacesByZone", mock.Anything, "host1", "web01").Once().Return([]model.NetworkInterface{
					{Host: "host1", Link: "web01_net0", Class: model.LinkClassVNIC, Zone: "web01"},
				}, nil)
				m.storage.On("AssignInterfaceZone", mock.Anything, "host1", "web01_net0", model.LinkClassVNIC, "").Once().Return(nil)
				m.storage.On("DeleteZone", mock.Anything, "host1", "web01").Once().Return(model.ErrNotFound)
				m.storage.On("DeleteUsageByLinkPrefix", mock.Anything, "host1", "web01_").Once().Return(nil)
				m.storage.On("DeleteIPAddressesByLinkPrefix", mock.Anything, "host1", "web01_").Once().Return(nil)
				m.storage.On("CancelPendingTasksByZone", mock.Anything, "host1", "web01").Once().Return(0, nil)
			},
			expResult: &queue.Result{Message: `zone "web01" deleted`},
		},

		"A teardown failure should abort before any record is removed.": {
			payload: model.ZoneDeletePayload{},
			mock: func(m *handlerMocks) {
				m.zones.On("State", mock.Anything, "web01").Once().Return(model.ZoneStatusRunning, nil)
				m.console.On("Terminate", mock.Anything, "web01").Once().Return(nil)
				m.zones.On("Shutdown", mock.Anything, "web01").Once().Return(errors.New("shutdown timed out"))
				m.zones.On("Halt", mock.Anything, "web01").Once().Return(errors.New("zone is busy"))
			},
			expErr: true,
		},

		"A live VNIC delete failure should be a cleanup problem, the records still go.": {
			payload: model.ZoneDeletePayload{RemoveNetwork: true},
			mock: func(m *handlerMocks) {
				m.zones.On("State", mock.Anything, "web01").Once().Return(model.ZoneStatus(""), model.ErrNotFound)
				m.storage.On("ListInterfacesByZone", mock.Anything, "host1", "web01").Once().Return([]model.NetworkInterface{
					{Host: "host1", Link: "web01_net0", Class: model.LinkClassVNIC, Zone: "web01"},
				}, nil)
				m.storage.On("DeleteIPAddressesByLink", mock.Anything, "host1", "web01_net0").Once().Return(nil)
				m.links.On("DeleteVNIC", mock.Anything, "web01_net0", false).Once().Return(errors.New("link busy"))
				recordSweeps(m, 0)
			},
			expResult: &queue.Result{
				Message: `zone "web01" deleted`,
				CleanupError: `1 error occurred:
	* link busy

`,
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

			result, err := m.handlers(t).Delete(context.TODO(), task, test.payload)

			if test.expErr {
				assert.Error(err)
			} else if assert.NoError(err) {
				assert.Equal(test.expResult, result)
			}
			m.assertExpectations(t)
		})
	}
}

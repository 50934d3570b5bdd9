package zoneadm_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/zonectl/internal/log"
	"github.com/slok/zonectl/internal/model"
	"github.com/slok/zonectl/internal/sysexec"
	"github.com/slok/zonectl/internal/sysexec/sysexecmock"
	"github.com/slok/zonectl/internal/zoneadm"
)

func TestNewClient(t *testing.T) {
	tests := map[string]struct {
		config zoneadm.ClientConfig
		expErr bool
	}{
		"valid config should create client": {
			config: zoneadm.ClientConfig{Runner: &sysexecmock.MockRunner{}, Logger: log.Noop},
		},
		"missing runner should fail": {
			config: zoneadm.ClientConfig{Logger: log.Noop},
			expErr: true,
		},
		"nil logger should default to noop": {
			config: zoneadm.ClientConfig{Runner: &sysexecmock.MockRunner{}},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			client, err := zoneadm.NewClient(test.config)

			if test.expErr {
				require.Error(err)
				require.Nil(client)
			} else {
				require.NoError(err)
				require.NotNil(client)
			}
		})
	}
}

func TestClient_List(t *testing.T) {
	listCmd := sysexec.Cmd{Name: "zoneadm", Args: []string{"list", "-cp"}}

	tests := map[string]struct {
		mock     func(m *sysexecmock.MockRunner)
		expZones []zoneadm.ZoneInfo
		expErr   bool
	}{
		"a regular listing should be parsed, global zone excluded": {
			mock: func(m *sysexecmock.MockRunner) {
				stdout := "0:global:running:/::ipkg:shared\n" +
					"1:web01:running:/zones/web01:5f15ba2c-3c6c-4a62-9d4e-9e892c23a165:bhyve:excl\n" +
					"-:db01:installed:/zones/db01:0772d2e8-0a0b-4930-9e54-f28b438c4a9e:ipkg:excl\n"
				m.On("Run", mock.Anything, listCmd).Once().Return(sysexec.Result{Stdout: stdout}, nil)
			},
			expZones: []zoneadm.ZoneInfo{
				{ID: 1, Name: "web01", State: model.ZoneStatusRunning, Zonepath: "/zones/web01", UUID: "5f15ba2c-3c6c-4a62-9d4e-9e892c23a165", Brand: "bhyve", IPType: "excl"},
				{ID: -1, Name: "db01", State: model.ZoneStatusInstalled, Zonepath: "/zones/db01", UUID: "0772d2e8-0a0b-4930-9e54-f28b438c4a9e", Brand: "ipkg", IPType: "excl"},
			},
		},
		"escaped colons inside fields should be unescaped": {
			mock: func(m *sysexecmock.MockRunner) {
				stdout := "-:odd:configured:/zones/o\\:dd:u-u-i-d:ipkg:excl\n"
				m.On("Run", mock.Anything, listCmd).Once().Return(sysexec.Result{Stdout: stdout}, nil)
			},
			expZones: []zoneadm.ZoneInfo{
				{ID: -1, Name: "odd", State: model.ZoneStatusConfigured, Zonepath: "/zones/o:dd", UUID: "u-u-i-d", Brand: "ipkg", IPType: "excl"},
			},
		},
		"unparsable lines should be skipped, not fail the listing": {
			mock: func(m *sysexecmock.MockRunner) {
				stdout := "garbage\n" +
					"x:broken:running:/zones/broken:u:ipkg:excl\n" +
					"-:ok01:configured:/zones/ok01:u:ipkg:excl\n"
				m.On("Run", mock.Anything, listCmd).Once().Return(sysexec.Result{Stdout: stdout}, nil)
			},
			expZones: []zoneadm.ZoneInfo{
				{ID: -1, Name: "ok01", State: model.ZoneStatusConfigured, Zonepath: "/zones/ok01", UUID: "u", Brand: "ipkg", IPType: "excl"},
			},
		},
		"an empty listing should return no zones": {
			mock: func(m *sysexecmock.MockRunner) {
				m.On("Run", mock.Anything, listCmd).Once().Return(sysexec.Result{Stdout: "0:global:running:/::ipkg:shared\n"}, nil)
			},
		},
		"a failed command should return the stderr text": {
			mock: func(m *sysexecmock.MockRunner) {
				m.On("Run", mock.Anything, listCmd).Once().Return(sysexec.Result{ExitCode: 1, Stderr: "zoneadm: not enough privileges\n"}, nil)
			},
			expErr: true,
		},
		"a runner error should propagate": {
			mock: func(m *sysexecmock.MockRunner) {
				m.On("Run", mock.Anything, listCmd).Once().Return(sysexec.Result{}, fmt.Errorf("something went wrong"))
			},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			mRunner := &sysexecmock.MockRunner{}
			test.mock(mRunner)

			client, err := zoneadm.NewClient(zoneadm.ClientConfig{Runner: mRunner})
			require.NoError(err)

			zones, err := client.List(context.Background())

			if test.expErr {
				assert.Error(err)
			} else {
				assert.NoError(err)
				assert.Equal(test.expZones, zones)
			}

			mRunner.AssertExpectations(t)
		})
	}
}

func TestClient_State(t *testing.T) {
	listCmd := sysexec.Cmd{Name: "zoneadm", Args: []string{"list", "-cp"}}
	stdout := "1:web01:running:/zones/web01:u:bhyve:excl\n" +
		"-:db01:installed:/zones/db01:u:ipkg:excl\n"

	tests := map[string]struct {
		zone        string
		expState    model.ZoneStatus
		expNotFound bool
	}{
		"a running zone should report running":      {zone: "web01", expState: model.ZoneStatusRunning},
		"an installed zone should report installed": {zone: "db01", expState: model.ZoneStatusInstalled},
		"an unknown zone should report not found":   {zone: "ghost", expNotFound: true},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			mRunner := &sysexecmock.MockRunner{}
			mRunner.On("Run", mock.Anything, listCmd).Once().Return(sysexec.Result{Stdout: stdout}, nil)

			client, err := zoneadm.NewClient(zoneadm.ClientConfig{Runner: mRunner})
			require.NoError(err)

			state, err := client.State(context.Background(), test.zone)

			if test.expNotFound {
				assert.True(errors.Is(err, model.ErrNotFound))
			} else {
				assert.NoError(err)
				assert.Equal(test.expState, state)
			}

			mRunner.AssertExpectations(t)
		})
	}
}

func TestClient_Lifecycle(t *testing.T) {
	tests := map[string]struct {
		run    func(ctx context.Context, c *zoneadm.Client) error
		expCmd sysexec.Cmd
	}{
		"boot should run zoneadm boot": {
			run:    func(ctx context.Context, c *zoneadm.Client) error { return c.Boot(ctx, "web01") },
			expCmd: sysexec.Cmd{Name: "zoneadm", Args: []string{"-z", "web01", "boot"}},
		},
		"shutdown should run zoneadm shutdown": {
			run:    func(ctx context.Context, c *zoneadm.Client) error { return c.Shutdown(ctx, "web01") },
			expCmd: sysexec.Cmd{Name: "zoneadm", Args: []string{"-z", "web01", "shutdown"}},
		},
		"halt should run zoneadm halt": {
			run:    func(ctx context.Context, c *zoneadm.Client) error { return c.Halt(ctx, "web01") },
			expCmd: sysexec.Cmd{Name: "zoneadm", Args: []string{"-z", "web01", "halt"}},
		},
		"install should run zoneadm install": {
			run:    func(ctx context.Context, c *zoneadm.Client) error { return c.Install(ctx, "web01") },
			expCmd: sysexec.Cmd{Name: "zoneadm", Args: []string{"-z", "web01", "install"}},
		},
		"uninstall should run zoneadm uninstall forced": {
			run:    func(ctx context.Context, c *zoneadm.Client) error { return c.Uninstall(ctx, "web01") },
			expCmd: sysexec.Cmd{Name: "zoneadm", Args: []string{"-z", "web01", "uninstall", "-F"}},
		},
		"unconfigure should run zonecfg delete forced": {
			run:    func(ctx context.Context, c *zoneadm.Client) error { return c.Unconfigure(ctx, "web01") },
			expCmd: sysexec.Cmd{Name: "zonecfg", Args: []string{"-z", "web01", "delete", "-F"}},
		},
		"fixing zonepath permissions should chmod the zonepath": {
			run: func(ctx context.Context, c *zoneadm.Client) error {
				return c.FixZonepathPermissions(ctx, "/zones/web01")
			},
			expCmd: sysexec.Cmd{Name: "chmod", Args: []string{"700", "/zones/web01"}},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			mRunner := &sysexecmock.MockRunner{}
			mRunner.On("Run", mock.Anything, test.expCmd).Once().Return(sysexec.Result{}, nil)

			client, err := zoneadm.NewClient(zoneadm.ClientConfig{Runner: mRunner})
			require.NoError(err)

			assert.NoError(test.run(context.Background(), client))

			mRunner.AssertExpectations(t)
		})
	}
}

func TestClient_LifecycleFailure(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	mRunner := &sysexecmock.MockRunner{}
	mRunner.On("Run", mock.Anything, sysexec.Cmd{Name: "zoneadm", Args: []string{"-z", "web01", "boot"}}).
		Once().Return(sysexec.Result{ExitCode: 1, Stderr: "zone 'web01': zone is already booted\n"}, nil)

	client, err := zoneadm.NewClient(zoneadm.ClientConfig{Runner: mRunner})
	require.NoError(err)

	err = client.Boot(context.Background(), "web01")
	require.Error(err)
	assert.Contains(err.Error(), "zone is already booted")

	mRunner.AssertExpectations(t)
}

func TestClient_Configure(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	config := model.ZoneConfiguration{Zonepath: "/zones/web01", Brand: "ipkg"}
	script, err := zoneadm.BuildScript(config)
	require.NoError(err)

	mRunner := &sysexecmock.MockRunner{}
	mRunner.On("Run", mock.Anything, sysexec.Cmd{Name: "zonecfg", Args: []string{"-z", "web01"}, Stdin: script}).
		Once().Return(sysexec.Result{}, nil)

	client, err := zoneadm.NewClient(zoneadm.ClientConfig{Runner: mRunner})
	require.NoError(err)

	assert.NoError(client.Configure(context.Background(), "web01", config))

	mRunner.AssertExpectations(t)
}

func TestClient_Export(t *testing.T) {
	exportCmd := sysexec.Cmd{Name: "zonecfg", Args: []string{"-z", "web01", "export"}}

	tests := map[string]struct {
		mock        func(m *sysexecmock.MockRunner)
		expConfig   *model.ZoneConfiguration
		expErr      bool
		expNotFound bool
	}{
		"a live configuration should be parsed": {
			mock: func(m *sysexecmock.MockRunner) {
				stdout := "create -b\n" +
					"set zonepath=/zones/web01\n" +
					"set brand=ipkg\n" +
					"set autoboot=true\n" +
					"add dataset\n" +
					"set name=tank/shared\n" +
					"end\n" +
					"commit\n"
				m.On("Run", mock.Anything, exportCmd).Once().Return(sysexec.Result{Stdout: stdout}, nil)
			},
			expConfig: &model.ZoneConfiguration{
				Zonepath: "/zones/web01",
				Brand:    "ipkg",
				Autoboot: true,
				Datasets: []string{"tank/shared"},
			},
		},
		"a missing zone should report not found": {
			mock: func(m *sysexecmock.MockRunner) {
				m.On("Run", mock.Anything, exportCmd).Once().Return(sysexec.Result{ExitCode: 1, Stderr: "zonecfg: No such zone configured\n"}, nil)
			},
			expErr:      true,
			expNotFound: true,
		},
		"a failed export should error": {
			mock: func(m *sysexecmock.MockRunner) {
				m.On("Run", mock.Anything, exportCmd).Once().Return(sysexec.Result{ExitCode: 1, Stderr: "zonecfg: internal error\n"}, nil)
			},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			mRunner := &sysexecmock.MockRunner{}
			test.mock(mRunner)

			client, err := zoneadm.NewClient(zoneadm.ClientConfig{Runner: mRunner})
			require.NoError(err)

			config, err := client.Export(context.Background(), "web01")

			if test.expErr {
				assert.Error(err)
				if test.expNotFound {
					assert.True(errors.Is(err, model.ErrNotFound))
				}
			} else {
				assert.NoError(err)
				assert.Equal(test.expConfig, config)
			}

			mRunner.AssertExpectations(t)
		})
	}
}

package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/zonectl/internal/model"
	"github.com/slok/zonectl/internal/storage"
	"github.com/slok/zonectl/internal/storage/memory"
)

func newRepository(t *testing.T) *memory.Repository {
	repo, err := memory.NewRepository(memory.RepositoryConfig{})
	require.NoError(t, err)
	return repo
}

func testTask(id string, mutators ...func(*model.Task)) model.Task {
	task := model.Task{
		ID:        id,
		Host:      "hv01",
		ZoneName:  "web01",
		Operation: model.OperationZoneStart,
		Priority:  model.TaskPriorityMedium,
		Status:    model.TaskStatusPending,
		CreatedBy: "test",
		CreatedAt: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
	}
	for _, m := range mutators {
		m(&task)
	}
	return task
}

func TestRepositoryTaskLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("Create and get should round trip.", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)
		repo := newRepository(t)

		task := testTask("task-1")
		require.NoError(repo.CreateTask(ctx, task))

		got, err := repo.GetTask(ctx, "task-1")
		require.NoError(err)
		assert.Equal(task, *got)
	})

	t.Run("Creating a duplicate id should fail.", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)
		repo := newRepository(t)

		require.NoError(repo.CreateTask(ctx, testTask("task-1")))
		err := repo.CreateTask(ctx, testTask("task-1"))
		assert.True(errors.Is(err, model.ErrAlreadyExists))
	})

	t.Run("Creating an invalid task should fail.", func(t *testing.T) {
		assert := assert.New(t)
		repo := newRepository(t)

		err := repo.CreateTask(ctx, testTask("task-1", func(t *model.Task) { t.Priority = "urgent" }))
		assert.True(errors.Is(err, model.ErrNotValid))
	})

	t.Run("Getting a missing task should fail with not found.", func(t *testing.T) {
		assert := assert.New(t)
		repo := newRepository(t)

		_, err := repo.GetTask(ctx, "missing")
		assert.True(errors.Is(err, model.ErrNotFound))
	})

	t.Run("Completing a claimed task should store message and cleanup note.", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)
		repo := newRepository(t)

		require.NoError(repo.CreateTask(ctx, testTask("task-1")))
		_, err := repo.ClaimNextTask(ctx, "hv01")
		require.NoError(err)

		require.NoError(repo.MarkTaskCompleted(ctx, "task-1", "zone started", "vnic sweep failed"))

		got, err := repo.GetTask(ctx, "task-1")
		require.NoError(err)
		assert.Equal(model.TaskStatusCompleted, got.Status)
		assert.Equal("zone started", got.Message)
		assert.Equal("vnic sweep failed", got.CleanupError)
	})

	t.Run("Failing a claimed task should store the reason.", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)
		repo := newRepository(t)

		require.NoError(repo.CreateTask(ctx, testTask("task-1")))
		_, err := repo.ClaimNextTask(ctx, "hv01")
		require.NoError(err)

		require.NoError(repo.MarkTaskFailed(ctx, "task-1", "zoneadm: boot failed"))

		got, err := repo.GetTask(ctx, "task-1")
		require.NoError(err)
		assert.Equal(model.TaskStatusFailed, got.Status)
		assert.Equal("zoneadm: boot failed", got.Error)
	})

	t.Run("Completing a pending task should fail, it was never claimed.", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)
		repo := newRepository(t)

		require.NoError(repo.CreateTask(ctx, testTask("task-1")))
		err := repo.MarkTaskCompleted(ctx, "task-1", "", "")
		assert.True(errors.Is(err, model.ErrNotValid))
	})

	t.Run("Cancelling a pending task should work exactly once.", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)
		repo := newRepository(t)

		require.NoError(repo.CreateTask(ctx, testTask("task-1")))
		require.NoError(repo.MarkTaskCancelled(ctx, "task-1"))

		err := repo.MarkTaskCancelled(ctx, "task-1")
		assert.True(errors.Is(err, model.ErrNotValid))

		got, err := repo.GetTask(ctx, "task-1")
		require.NoError(err)
		assert.Equal(model.TaskStatusCancelled, got.Status)
	})

	t.Run("Cancelling a running task should fail.", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)
		repo := newRepository(t)

		require.NoError(repo.CreateTask(ctx, testTask("task-1")))
		_, err := repo.ClaimNextTask(ctx, "hv01")
		require.NoError(err)

		err = repo.MarkTaskCancelled(ctx, "task-1")
		assert.True(errors.Is(err, model.ErrNotValid))
	})

	t.Run("Readying a prepared task should make it pending.", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)
		repo := newRepository(t)

		staged := testTask("task-1", func(t *model.Task) {
			t.Operation = model.OperationArtifactProcess
			t.Status = model.TaskStatusPrepared
		})
		require.NoError(repo.CreateTask(ctx, staged))

		// Prepared tasks are invisible to claimers.
		_, err := repo.ClaimNextTask(ctx, "hv01")
		assert.True(errors.Is(err, model.ErrNotFound))

		require.NoError(repo.MarkTaskReady(ctx, "task-1"))

		claimed, err := repo.ClaimNextTask(ctx, "hv01")
		require.NoError(err)
		assert.Equal("task-1", claimed.ID)
	})

	t.Run("Readying a pending task should fail.", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)
		repo := newRepository(t)

		require.NoError(repo.CreateTask(ctx, testTask("task-1")))
		err := repo.MarkTaskReady(ctx, "task-1")
		assert.True(errors.Is(err, model.ErrNotValid))
	})
}

func TestRepositoryClaimNextTask(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	tests := map[string]struct {
		tasks    []model.Task
		host     string
		expOrder []string
		expEmpty bool
	}{
		"Higher priorities should claim first regardless of age.": {
			tasks: []model.Task{
				testTask("old-low", func(t *model.Task) { t.Priority = model.TaskPriorityLow; t.CreatedAt = base }),
				testTask("new-high", func(t *model.Task) { t.Priority = model.TaskPriorityHigh; t.CreatedAt = base.Add(time.Hour) }),
				testTask("mid-medium", func(t *model.Task) { t.Priority = model.TaskPriorityMedium; t.CreatedAt = base.Add(30 * time.Minute) }),
				testTask("mid-background", func(t *model.Task) { t.Priority = model.TaskPriorityBackground; t.CreatedAt = base }),
			},
			host:     "hv01",
			expOrder: []string{"new-high", "mid-medium", "mid-background", "old-low"},
		},
		"Within a priority tier the oldest should claim first.": {
			tasks: []model.Task{
				testTask("second", func(t *model.Task) { t.CreatedAt = base.Add(time.Minute) }),
				testTask("first", func(t *model.Task) { t.CreatedAt = base }),
				testTask("third", func(t *model.Task) { t.CreatedAt = base.Add(2 * time.Minute) }),
			},
			host:     "hv01",
			expOrder: []string{"first", "second", "third"},
		},
		"Identical priority and age should break ties by id.": {
			tasks: []model.Task{
				testTask("task-b"),
				testTask("task-a"),
			},
			host:     "hv01",
			expOrder: []string{"task-a", "task-b"},
		},
		"Tasks of other hosts should never be claimed.": {
			tasks: []model.Task{
				testTask("other-host", func(t *model.Task) { t.Host = "hv02" }),
			},
			host:     "hv01",
			expEmpty: true,
		},
		"Prepared tasks should never be claimed.": {
			tasks: []model.Task{
				testTask("staged", func(t *model.Task) {
					t.Operation = model.OperationArtifactProcess
					t.Status = model.TaskStatusPrepared
				}),
			},
			host:     "hv01",
			expEmpty: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)
			repo := newRepository(t)

			for _, task := range test.tasks {
				require.NoError(repo.CreateTask(ctx, task))
			}

			if test.expEmpty {
				_, err := repo.ClaimNextTask(ctx, test.host)
				assert.True(errors.Is(err, model.ErrNotFound))
				return
			}

			for _, expID := range test.expOrder {
				claimed, err := repo.ClaimNextTask(ctx, test.host)
				require.NoError(err)
				assert.Equal(expID, claimed.ID)
				assert.Equal(model.TaskStatusRunning, claimed.Status)
			}

			_, err := repo.ClaimNextTask(ctx, test.host)
			assert.True(errors.Is(err, model.ErrNotFound))
		})
	}
}

func TestRepositoryClaimNextTaskConcurrent(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()
	repo := newRepository(t)

	const total = 50
	for i := 0; i < total; i++ {
		require.NoError(repo.CreateTask(ctx, testTask(ulidLike(i))))
	}

	var mu sync.Mutex
	claimed := map[string]int{}
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				task, err := repo.ClaimNextTask(ctx, "hv01")
				if err != nil {
					return
				}
				mu.Lock()
				claimed[task.ID]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(claimed, total)
	for id, n := range claimed {
		assert.Equal(1, n, "task %s was claimed %d times", id, n)
	}
}

func ulidLike(i int) string {
	const alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"
	return "01TESTTASK" + string(alphabet[i/32]) + string(alphabet[i%32])
}

func TestRepositoryCancelPendingTasksByZone(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()
	repo := newRepository(t)

	require.NoError(repo.CreateTask(ctx, testTask("web-1")))
	require.NoError(repo.CreateTask(ctx, testTask("web-2")))
	require.NoError(repo.CreateTask(ctx, testTask("db-1", func(t *model.Task) { t.ZoneName = "db01" })))
	require.NoError(repo.CreateTask(ctx, testTask("web-running")))

	// Claim one so it is running and must survive the sweep.
	_, err := repo.ClaimNextTask(ctx, "hv01")
	require.NoError(err)

	cancelled, err := repo.CancelPendingTasksByZone(ctx, "hv01", "web01")
	require.NoError(err)
	assert.Equal(2, cancelled)

	tasks, err := repo.ListTasks(ctx, "hv01", storage.TaskListFilter{ZoneName: "web01", Statuses: []model.TaskStatus{model.TaskStatusCancelled}})
	require.NoError(err)
	assert.Len(tasks, 2)

	running, err := repo.ListTasks(ctx, "hv01", storage.TaskListFilter{Statuses: []model.TaskStatus{model.TaskStatusRunning}})
	require.NoError(err)
	assert.Len(running, 1)

	other, err := repo.GetTask(ctx, "db-1")
	require.NoError(err)
	assert.Equal(model.TaskStatusPending, other.Status)
}

func TestRepositoryListTasks(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()
	repo := newRepository(t)
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(repo.CreateTask(ctx, testTask("task-1", func(t *model.Task) { t.CreatedAt = base })))
	require.NoError(repo.CreateTask(ctx, testTask("task-2", func(t *model.Task) { t.CreatedAt = base.Add(time.Minute) })))
	require.NoError(repo.CreateTask(ctx, testTask("task-3", func(t *model.Task) {
		t.CreatedAt = base.Add(2 * time.Minute)
		t.Operation = model.OperationZoneStop
	})))
	require.NoError(repo.CreateTask(ctx, testTask("elsewhere", func(t *model.Task) {
		t.Host = "hv02"
		t.CreatedAt = base.Add(3 * time.Minute)
	})))

	t.Run("Listing without filters should return the host's tasks newest first.", func(t *testing.T) {
		tasks, err := repo.ListTasks(ctx, "hv01", storage.TaskListFilter{})
		require.NoError(err)
		ids := []string{}
		for _, task := range tasks {
			ids = append(ids, task.ID)
		}
		assert.Equal([]string{"task-3", "task-2", "task-1"}, ids)
	})

	t.Run("Filtering by operation should work.", func(t *testing.T) {
		tasks, err := repo.ListTasks(ctx, "hv01", storage.TaskListFilter{Operation: model.OperationZoneStop})
		require.NoError(err)
		require.Len(tasks, 1)
		assert.Equal("task-3", tasks[0].ID)
	})

	t.Run("Limit should cap from the newest end.", func(t *testing.T) {
		tasks, err := repo.ListTasks(ctx, "hv01", storage.TaskListFilter{Limit: 2})
		require.NoError(err)
		require.Len(tasks, 2)
		assert.Equal("task-3", tasks[0].ID)
		assert.Equal("task-2", tasks[1].ID)
	})
}

func TestRepositoryZones(t *testing.T) {
	ctx := context.Background()

	zone := model.Zone{
		Name:   "web01",
		Host:   "hv01",
		Status: model.ZoneStatusRunning,
		Brand:  "ipkg",
		Configuration: model.ZoneConfiguration{
			Zonepath: "/zones/web01",
			Brand:    "ipkg",
		},
	}

	t.Run("Create, get, update and delete should round trip.", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)
		repo := newRepository(t)

		require.NoError(repo.CreateZone(ctx, zone))

		err := repo.CreateZone(ctx, zone)
		assert.True(errors.Is(err, model.ErrAlreadyExists))

		got, err := repo.GetZone(ctx, "hv01", "web01")
		require.NoError(err)
		assert.Equal(zone, *got)

		updated := zone
		updated.Status = model.ZoneStatusDown
		require.NoError(repo.UpdateZone(ctx, updated))

		got, err = repo.GetZone(ctx, "hv01", "web01")
		require.NoError(err)
		assert.Equal(model.ZoneStatusDown, got.Status)

		require.NoError(repo.DeleteZone(ctx, "hv01", "web01"))
		_, err = repo.GetZone(ctx, "hv01", "web01")
		assert.True(errors.Is(err, model.ErrNotFound))
	})

	t.Run("Listing should be scoped to the host and sorted.", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)
		repo := newRepository(t)

		zoneB := zone
		zoneB.Name = "db01"
		zoneOther := zone
		zoneOther.Name = "web02"
		zoneOther.Host = "hv02"

		require.NoError(repo.CreateZone(ctx, zone))
		require.NoError(repo.CreateZone(ctx, zoneB))
		require.NoError(repo.CreateZone(ctx, zoneOther))

		zones, err := repo.ListZones(ctx, "hv01")
		require.NoError(err)
		require.Len(zones, 2)
		assert.Equal("db01", zones[0].Name)
		assert.Equal("web01", zones[1].Name)
	})

	t.Run("Orphan flag should flip without touching the rest.", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)
		repo := newRepository(t)

		require.NoError(repo.CreateZone(ctx, zone))
		require.NoError(repo.SetZoneOrphaned(ctx, "hv01", "web01", true))

		got, err := repo.GetZone(ctx, "hv01", "web01")
		require.NoError(err)
		assert.True(got.IsOrphaned)
		assert.Equal(zone.Configuration, got.Configuration)

		err = repo.SetZoneOrphaned(ctx, "hv01", "missing", true)
		assert.True(errors.Is(err, model.ErrNotFound))
	})
}

func TestRepositoryInterfaces(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	iface := model.NetworkInterface{
		Host:      "hv01",
		Link:      "web01_net0",
		Class:     model.LinkClassVNIC,
		Zone:      "web01",
		CreatedAt: base,
		UpdatedAt: base,
	}

	t.Run("Upsert should preserve the creation timestamp on refresh.", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)
		repo := newRepository(t)

		require.NoError(repo.UpsertInterface(ctx, iface))

		refreshed := iface
		refreshed.CreatedAt = base.Add(time.Hour)
		refreshed.UpdatedAt = base.Add(time.Hour)
		require.NoError(repo.UpsertInterface(ctx, refreshed))

		got, err := repo.GetInterface(ctx, "hv01", "web01_net0", model.LinkClassVNIC)
		require.NoError(err)
		assert.Equal(base, got.CreatedAt)
		assert.Equal(base.Add(time.Hour), got.UpdatedAt)
	})

	t.Run("Records of another class should be untouched by class-keyed writes.", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)
		repo := newRepository(t)

		stub := iface
		stub.Class = model.LinkClassEtherstub
		stub.Zone = ""
		require.NoError(repo.UpsertInterface(ctx, iface))
		require.NoError(repo.UpsertInterface(ctx, stub))

		require.NoError(repo.DeleteInterface(ctx, "hv01", "web01_net0", model.LinkClassVNIC))

		_, err := repo.GetInterface(ctx, "hv01", "web01_net0", model.LinkClassVNIC)
		assert.True(errors.Is(err, model.ErrNotFound))
		got, err := repo.GetInterface(ctx, "hv01", "web01_net0", model.LinkClassEtherstub)
		require.NoError(err)
		assert.Equal(model.LinkClassEtherstub, got.Class)
	})

	t.Run("Assigning and clearing a zone should work.", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)
		repo := newRepository(t)

		require.NoError(repo.UpsertInterface(ctx, iface))
		require.NoError(repo.AssignInterfaceZone(ctx, "hv01", "web01_net0", model.LinkClassVNIC, ""))

		got, err := repo.GetInterface(ctx, "hv01", "web01_net0", model.LinkClassVNIC)
		require.NoError(err)
		assert.Empty(got.Zone)

		byZone, err := repo.ListInterfacesByZone(ctx, "hv01", "web01")
		require.NoError(err)
		assert.Empty(byZone)
	})

	t.Run("Monitoring rows should sweep by link and by prefix.", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)
		repo := newRepository(t)

		usage := func(link string) model.NetworkUsage {
			return model.NetworkUsage{Host: "hv01", Link: link, ScanTimestamp: base, RXBytes: 1, TXBytes: 2}
		}
		addr := func(addrObj string) model.IPAddress {
			return model.IPAddress{Host: "hv01", AddrObj: addrObj, ScanTimestamp: base, Address: "10.0.0.5/24", State: "ok"}
		}

		require.NoError(repo.RecordUsage(ctx, usage("web01_net0")))
		require.NoError(repo.RecordUsage(ctx, usage("web01_net1")))
		require.NoError(repo.RecordUsage(ctx, usage("db01_net0")))
		require.NoError(repo.RecordIPAddress(ctx, addr("web01_net0/v4")))
		require.NoError(repo.RecordIPAddress(ctx, addr("db01_net0/v4")))

		require.NoError(repo.DeleteUsageByLink(ctx, "hv01", "db01_net0"))
		require.NoError(repo.DeleteIPAddressesByLink(ctx, "hv01", "db01_net0"))
		require.NoError(repo.DeleteUsageByLinkPrefix(ctx, "hv01", "web01_"))
		require.NoError(repo.DeleteIPAddressesByLinkPrefix(ctx, "hv01", "web01_"))

		remaining, err := repo.LatestUsage(ctx, "hv01")
		require.NoError(err)
		assert.Empty(remaining)

		remainingIPs, err := repo.LatestIPAddresses(ctx, "hv01")
		require.NoError(err)
		assert.Empty(remainingIPs)
	})

	t.Run("A same second re-record should refresh the sample, not duplicate it.", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)
		repo := newRepository(t)

		require.NoError(repo.RecordUsage(ctx, model.NetworkUsage{Host: "hv01", Link: "igb0", ScanTimestamp: base, RXBytes: 100}))
		require.NoError(repo.RecordUsage(ctx, model.NetworkUsage{Host: "hv01", Link: "igb0", ScanTimestamp: base, RXBytes: 150}))

		latest, err := repo.LatestUsage(ctx, "hv01")
		require.NoError(err)
		require.Len(latest, 1)
		assert.Equal(int64(150), latest[0].RXBytes)

		pruned, err := repo.PruneUsageBefore(ctx, "hv01", base.Add(time.Second))
		require.NoError(err)
		assert.Equal(1, pruned)
	})

	t.Run("Latest reads should pick the newest row per link.", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)
		repo := newRepository(t)

		require.NoError(repo.RecordUsage(ctx, model.NetworkUsage{Host: "hv01", Link: "igb0", ScanTimestamp: base, RXBytes: 100}))
		require.NoError(repo.RecordUsage(ctx, model.NetworkUsage{Host: "hv01", Link: "igb0", ScanTimestamp: base.Add(time.Minute), RXBytes: 200}))
		require.NoError(repo.RecordUsage(ctx, model.NetworkUsage{Host: "hv01", Link: "igb1", ScanTimestamp: base, RXBytes: 5}))

		latest, err := repo.LatestUsage(ctx, "hv01")
		require.NoError(err)
		require.Len(latest, 2)
		assert.Equal("igb0", latest[0].Link)
		assert.Equal(int64(200), latest[0].RXBytes)
		assert.Equal("igb1", latest[1].Link)
	})

	t.Run("Prune should only remove rows older than the cutoff.", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)
		repo := newRepository(t)

		old := model.NetworkUsage{Host: "hv01", Link: "igb0", ScanTimestamp: base}
		fresh := model.NetworkUsage{Host: "hv01", Link: "igb0", ScanTimestamp: base.Add(2 * time.Hour)}
		require.NoError(repo.RecordUsage(ctx, old))
		require.NoError(repo.RecordUsage(ctx, fresh))

		pruned, err := repo.PruneUsageBefore(ctx, "hv01", base.Add(time.Hour))
		require.NoError(err)
		assert.Equal(1, pruned)
	})
}

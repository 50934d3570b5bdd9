package printer

import "github.com/slok/zonectl/internal/model"

// LinkView is a network interface paired with its latest observations,
// assembled for display.
type LinkView struct {
	Interface model.NetworkInterface
	Usage     *model.NetworkUsage
	Addresses []model.IPAddress
}

// Printer knows how to print queue and zone information in different formats.
type Printer interface {
	PrintTasks(tasks []model.Task) error
	PrintTask(task model.Task) error
	PrintZones(zones []model.Zone) error
	PrintLinks(links []LinkView) error
	PrintChecks(results []model.CheckResult) error
	PrintMessage(msg string) error
}

package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/slok/zonectl/internal/model"
)

// JSONPrinter prints queue and zone information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

// taskItem represents a task in the list output (subset of fields).
type taskItem struct {
	ID        string    `json:"id"`
	Operation string    `json:"operation"`
	ZoneName  string    `json:"zone_name,omitempty"`
	Priority  string    `json:"priority"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// taskOutput represents the full task detail output.
type taskOutput struct {
	ID           string          `json:"id"`
	Host         string          `json:"host"`
	Operation    string          `json:"operation"`
	ZoneName     string          `json:"zone_name,omitempty"`
	Priority     string          `json:"priority"`
	Status       string          `json:"status"`
	CreatedBy    string          `json:"created_by,omitempty"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
	Message      string          `json:"message,omitempty"`
	Error        string          `json:"error,omitempty"`
	CleanupError string          `json:"cleanup_error,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// zoneItem represents a zone in the list output.
type zoneItem struct {
	Name           string    `json:"name"`
	Status         string    `json:"status"`
	Brand          string    `json:"brand,omitempty"`
	AutoDiscovered bool      `json:"auto_discovered"`
	IsOrphaned     bool      `json:"is_orphaned"`
	LastSeen       time.Time `json:"last_seen"`
}

// linkItem represents a network interface with its latest observations.
type linkItem struct {
	Link      string     `json:"link"`
	Class     string     `json:"class"`
	Zone      string     `json:"zone,omitempty"`
	RXBytes   *int64     `json:"rx_bytes,omitempty"`
	TXBytes   *int64     `json:"tx_bytes,omitempty"`
	Addresses []string   `json:"addresses,omitempty"`
	ScannedAt *time.Time `json:"scanned_at,omitempty"`
}

// checkItem represents a preflight check result.
type checkItem struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

// PrintTasks prints tasks in JSON format with a subset of fields.
func (j *JSONPrinter) PrintTasks(tasks []model.Task) error {
	items := make([]taskItem, len(tasks))
	for i, t := range tasks {
		items[i] = taskItem{
			ID:        t.ID,
			Operation: string(t.Operation),
			ZoneName:  t.ZoneName,
			Priority:  string(t.Priority),
			Status:    string(t.Status),
			CreatedAt: t.CreatedAt.UTC(),
		}
	}

	return j.encode(items)
}

// PrintTask prints the full task detail in JSON format.
func (j *JSONPrinter) PrintTask(task model.Task) error {
	return j.encode(taskOutput{
		ID:           task.ID,
		Host:         task.Host,
		Operation:    string(task.Operation),
		ZoneName:     task.ZoneName,
		Priority:     string(task.Priority),
		Status:       string(task.Status),
		CreatedBy:    task.CreatedBy,
		Metadata:     task.Metadata,
		Message:      task.Message,
		Error:        task.Error,
		CleanupError: task.CleanupError,
		CreatedAt:    task.CreatedAt.UTC(),
		UpdatedAt:    task.UpdatedAt.UTC(),
	})
}

// PrintZones prints zones in JSON format.
func (j *JSONPrinter) PrintZones(zones []model.Zone) error {
	items := make([]zoneItem, len(zones))
	for i, z := range zones {
		items[i] = zoneItem{
			Name:           z.Name,
			Status:         string(z.Status),
			Brand:          z.Brand,
			AutoDiscovered: z.AutoDiscovered,
			IsOrphaned:     z.IsOrphaned,
			LastSeen:       z.LastSeen.UTC(),
		}
	}

	return j.encode(items)
}

// PrintLinks prints network interfaces with their latest observations in
// JSON format.
func (j *JSONPrinter) PrintLinks(links []LinkView) error {
	items := make([]linkItem, len(links))
	for i, l := range links {
		item := linkItem{
			Link:  l.Interface.Link,
			Class: string(l.Interface.Class),
			Zone:  l.Interface.Zone,
		}
		if l.Usage != nil {
			rx, tx := l.Usage.RXBytes, l.Usage.TXBytes
			scanned := l.Usage.ScanTimestamp.UTC()
			item.RXBytes = &rx
			item.TXBytes = &tx
			item.ScannedAt = &scanned
		}
		for _, a := range l.Addresses {
			item.Addresses = append(item.Addresses, a.Address)
		}
		items[i] = item
	}

	return j.encode(items)
}

// PrintChecks prints preflight check results in JSON format.
func (j *JSONPrinter) PrintChecks(results []model.CheckResult) error {
	items := make([]checkItem, len(results))
	for i, r := range results {
		items[i] = checkItem{
			ID:      r.ID,
			Status:  string(r.Status),
			Message: r.Message,
		}
	}

	return j.encode(items)
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.encode(messageOutput{Message: msg})
}

func (j *JSONPrinter) encode(v any) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

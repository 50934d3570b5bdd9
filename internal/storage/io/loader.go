package io

import (
	"context"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/slok/zonectl/internal/model"
)

// ZoneTemplate is a zone provisioning request loaded from a template file.
type ZoneTemplate struct {
	// Name is the zone name, optional in the file and overridable by the
	// caller.
	Name    string
	Payload model.ZoneCreatePayload
}

// TemplateYAMLRepository loads zone provisioning templates from YAML files.
type TemplateYAMLRepository struct {
	fs fs.FS
}

// NewTemplateYAMLRepository creates a new YAML template repository.
func NewTemplateYAMLRepository(filesystem fs.FS) *TemplateYAMLRepository {
	return &TemplateYAMLRepository{fs: filesystem}
}

// GetTemplate loads a zone template from a YAML file and returns a validated
// provisioning request.
func (r *TemplateYAMLRepository) GetTemplate(ctx context.Context, path string) (*ZoneTemplate, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading template file: %w", err)
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var tpl zoneTemplate
	if err := yaml.Unmarshal(data, &tpl); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	if err := tpl.validate(); err != nil {
		return nil, fmt.Errorf("invalid template: %w", err)
	}

	return tpl.toModel(), nil
}

// zoneTemplate represents the YAML structure of a zone template.
type zoneTemplate struct {
	Name         string             `yaml:"name"`
	Brand        string             `yaml:"brand"`
	Zonepath     string             `yaml:"zonepath"`
	IPType       string             `yaml:"ip_type"`
	Autoboot     bool               `yaml:"autoboot"`
	BootDisk     string             `yaml:"boot_disk"`
	Disks        []string           `yaml:"disks"`
	Attributes   []attributeConfig  `yaml:"attributes"`
	Devices      []deviceConfig     `yaml:"devices"`
	Filesystems  []filesystemConfig `yaml:"filesystems"`
	Datasets     []string           `yaml:"datasets"`
	Networks     []networkConfig    `yaml:"networks"`
	Provisioning map[string]string  `yaml:"provisioning"`
	Install      bool               `yaml:"install"`
	Boot         bool               `yaml:"boot"`
}

type attributeConfig struct {
	Name  string `yaml:"name"`
	Type  string `yaml:"type"`
	Value string `yaml:"value"`
}

type deviceConfig struct {
	Match string `yaml:"match"`
}

type filesystemConfig struct {
	Special string `yaml:"special"`
	Dir     string `yaml:"dir"`
	Type    string `yaml:"type"`
}

type networkConfig struct {
	Physical       string `yaml:"physical"`
	AllowedAddress string `yaml:"allowed_address"`
}

func (t zoneTemplate) validate() error {
	if t.Name != "" {
		if err := model.ValidateZoneName(t.Name); err != nil {
			return err
		}
	}
	if t.Brand == "" {
		return fmt.Errorf("brand is required")
	}
	if t.Zonepath == "" {
		return fmt.Errorf("zonepath is required")
	}

	for _, a := range t.Attributes {
		if a.Name == "" {
			return fmt.Errorf("attribute name is required")
		}
	}
	for _, d := range t.Devices {
		if d.Match == "" {
			return fmt.Errorf("device match is required")
		}
	}
	for _, f := range t.Filesystems {
		if f.Special == "" || f.Dir == "" {
			return fmt.Errorf("filesystem special and dir are required")
		}
	}
	for _, n := range t.Networks {
		if n.Physical == "" {
			return fmt.Errorf("network physical link is required")
		}
	}
	if t.Boot && !t.Install {
		return fmt.Errorf("boot requires install")
	}

	return nil
}

func (t zoneTemplate) toModel() *ZoneTemplate {
	config := model.ZoneConfiguration{
		Zonepath:     t.Zonepath,
		Brand:        t.Brand,
		IPType:       t.IPType,
		Autoboot:     t.Autoboot,
		BootDisk:     t.BootDisk,
		Disks:        t.Disks,
		Datasets:     t.Datasets,
		Provisioning: t.Provisioning,
	}

	for _, a := range t.Attributes {
		config.Attributes = append(config.Attributes, model.ZoneAttribute{Name: a.Name, Type: a.Type, Value: a.Value})
	}
	for _, d := range t.Devices {
		config.Devices = append(config.Devices, model.ZoneDevice{Match: d.Match})
	}
	for _, f := range t.Filesystems {
		config.Filesystems = append(config.Filesystems, model.ZoneFilesystem{Special: f.Special, Dir: f.Dir, Type: f.Type})
	}
	for _, n := range t.Networks {
		config.Networks = append(config.Networks, model.ZoneNetwork{Physical: n.Physical, AllowedAddress: n.AllowedAddress})
	}

	return &ZoneTemplate{
		Name: t.Name,
		Payload: model.ZoneCreatePayload{
			Configuration: config,
			Install:       t.Install,
			Boot:          t.Boot,
		},
	}
}

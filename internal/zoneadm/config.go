package zoneadm

import (
	"fmt"
	"strings"

	"github.com/slok/zonectl/internal/model"
)

// BuildScript renders a zone configuration as a zonecfg command script,
// suitable to feed `zonecfg -z <zone>` on standard input.
//
// The boot disk and the numbered disks travel as zone attributes, which is
// how VM brands carry their storage references.
func BuildScript(config model.ZoneConfiguration) (string, error) {
	if config.Zonepath == "" {
		return "", fmt.Errorf("zonepath is required: %w", model.ErrNotValid)
	}
	if config.Brand == "" {
		return "", fmt.Errorf("brand is required: %w", model.ErrNotValid)
	}

	lines := []string{
		"create -b",
		"set zonepath=" + quoteValue(config.Zonepath),
		"set brand=" + quoteValue(config.Brand),
	}
	if config.IPType != "" {
		lines = append(lines, "set ip-type="+config.IPType)
	}
	lines = append(lines, fmt.Sprintf("set autoboot=%t", config.Autoboot))

	emittedAttrs := map[string]bool{}
	if config.BootDisk != "" {
		lines = append(lines, attrLines("bootdisk", "string", config.BootDisk)...)
		emittedAttrs["bootdisk"] = true
	}
	for i, disk := range config.Disks {
		name := fmt.Sprintf("disk%d", i)
		lines = append(lines, attrLines(name, "string", disk)...)
		emittedAttrs[name] = true
	}
	for _, attr := range config.Attributes {
		// Attributes already generated from the disk fields win.
		if emittedAttrs[attr.Name] {
			continue
		}
		lines = append(lines, attrLines(attr.Name, attr.Type, attr.Value)...)
		emittedAttrs[attr.Name] = true
	}

	for _, dev := range config.Devices {
		lines = append(lines,
			"add device",
			"set match="+quoteValue(dev.Match),
			"end")
	}
	for _, fsys := range config.Filesystems {
		lines = append(lines,
			"add fs",
			"set dir="+quoteValue(fsys.Dir),
			"set special="+quoteValue(fsys.Special))
		if fsys.Type != "" {
			lines = append(lines, "set type="+fsys.Type)
		}
		lines = append(lines, "end")
	}
	for _, ds := range config.Datasets {
		lines = append(lines,
			"add dataset",
			"set name="+quoteValue(ds),
			"end")
	}
	for _, net := range config.Networks {
		lines = append(lines,
			"add net",
			"set physical="+quoteValue(net.Physical))
		if net.AllowedAddress != "" {
			lines = append(lines, "set allowed-address="+net.AllowedAddress)
		}
		lines = append(lines, "end")
	}

	lines = append(lines, "commit")

	return strings.Join(lines, "\n") + "\n", nil
}

// ParseExport parses `zonecfg -z <zone> export` output into a zone
// configuration. Unknown resources and settings are skipped so a newer or
// exotic zone still yields a usable partial configuration.
func ParseExport(output string) model.ZoneConfiguration {
	var config model.ZoneConfiguration

	block := ""
	var attr model.ZoneAttribute
	var dev model.ZoneDevice
	var fsys model.ZoneFilesystem
	var net model.ZoneNetwork
	var dataset string

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "" || line == "commit" || line == "exit" || strings.HasPrefix(line, "create"):
			continue

		case strings.HasPrefix(line, "add "):
			block = strings.TrimSpace(strings.TrimPrefix(line, "add "))
			attr = model.ZoneAttribute{}
			dev = model.ZoneDevice{}
			fsys = model.ZoneFilesystem{}
			net = model.ZoneNetwork{}
			dataset = ""

		case line == "end":
			switch block {
			case "attr":
				if attr.Name == "bootdisk" {
					config.BootDisk = attr.Value
				} else if attr.Name != "" {
					config.Attributes = append(config.Attributes, attr)
				}
			case "device":
				if dev.Match != "" {
					config.Devices = append(config.Devices, dev)
				}
			case "fs":
				if fsys.Dir != "" || fsys.Special != "" {
					config.Filesystems = append(config.Filesystems, fsys)
				}
			case "dataset":
				if dataset != "" {
					config.Datasets = append(config.Datasets, dataset)
				}
			case "net":
				if net.Physical != "" {
					config.Networks = append(config.Networks, net)
				}
			}
			block = ""

		case strings.HasPrefix(line, "set "):
			key, value, ok := strings.Cut(strings.TrimPrefix(line, "set "), "=")
			if !ok {
				continue
			}
			key = strings.TrimSpace(key)
			value = unquoteValue(strings.TrimSpace(value))

			switch block {
			case "":
				switch key {
				case "zonepath":
					config.Zonepath = value
				case "brand":
					config.Brand = value
				case "ip-type":
					config.IPType = value
				case "autoboot":
					config.Autoboot = value == "true"
				}
			case "attr":
				switch key {
				case "name":
					attr.Name = value
				case "type":
					attr.Type = value
				case "value":
					attr.Value = value
				}
			case "device":
				if key == "match" {
					dev.Match = value
				}
			case "fs":
				switch key {
				case "dir":
					fsys.Dir = value
				case "special":
					fsys.Special = value
				case "type":
					fsys.Type = value
				}
			case "dataset":
				if key == "name" {
					dataset = value
				}
			case "net":
				switch key {
				case "physical":
					net.Physical = value
				case "allowed-address":
					net.AllowedAddress = value
				}
			}
		}
	}

	return config
}

func attrLines(name, attrType, value string) []string {
	if attrType == "" {
		attrType = "string"
	}
	return []string{
		"add attr",
		"set name=" + name,
		"set type=" + attrType,
		"set value=" + quoteValue(value),
		"end",
	}
}

func quoteValue(v string) string {
	if v == "" || strings.ContainsAny(v, " \t") {
		return `"` + v + `"`
	}
	return v
}

func unquoteValue(v string) string {
	if len(v) >= 2 && strings.HasPrefix(v, `"`) && strings.HasSuffix(v, `"`) {
		return v[1 : len(v)-1]
	}
	return v
}

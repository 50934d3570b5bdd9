package model_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/zonectl/internal/model"
)

func TestNetworkInterfaceValidate(t *testing.T) {
	tests := map[string]struct {
		iface  model.NetworkInterface
		expErr bool
	}{
		"A valid interface should not fail.": {
			iface: model.NetworkInterface{Host: "hv01", Link: "web01_net0", Class: model.LinkClassVNIC},
		},
		"An unassigned physical link should not fail.": {
			iface: model.NetworkInterface{Host: "hv01", Link: "igb0", Class: model.LinkClassPhys},
		},
		"Missing host should fail.": {
			iface:  model.NetworkInterface{Link: "web01_net0", Class: model.LinkClassVNIC},
			expErr: true,
		},
		"Missing link should fail.": {
			iface:  model.NetworkInterface{Host: "hv01", Class: model.LinkClassVNIC},
			expErr: true,
		},
		"Unknown class should fail.": {
			iface:  model.NetworkInterface{Host: "hv01", Link: "web01_net0", Class: "bridge"},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			err := test.iface.Validate()

			if test.expErr {
				assert.Error(err)
				assert.True(errors.Is(err, model.ErrNotValid))
			} else {
				assert.NoError(err)
			}
		})
	}
}

func TestLinkClassZoneDeletable(t *testing.T) {
	tests := map[string]struct {
		class        model.LinkClass
		expDeletable bool
	}{
		"VNICs belong to their zone and may be deleted with it.": {
			class: model.LinkClassVNIC, expDeletable: true,
		},
		"VLAN links are shared fabric.":     {class: model.LinkClassVLAN},
		"Aggregations are shared fabric.":   {class: model.LinkClassAggr},
		"Etherstubs are shared fabric.":     {class: model.LinkClassEtherstub},
		"Physical links are never deleted.": {class: model.LinkClassPhys},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			assert.Equal(test.expDeletable, test.class.ZoneDeletable())
		})
	}
}

func TestIPAddressLink(t *testing.T) {
	tests := map[string]struct {
		addrObj string
		expLink string
	}{
		"An address object should strip the address part.": {addrObj: "web01_net0/v4", expLink: "web01_net0"},
		"A bare link should be returned as-is.":            {addrObj: "igb0", expLink: "igb0"},
		"An empty address object yields an empty link.":    {addrObj: "", expLink: ""},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			a := model.IPAddress{AddrObj: test.addrObj}
			assert.Equal(test.expLink, a.Link())
		})
	}
}

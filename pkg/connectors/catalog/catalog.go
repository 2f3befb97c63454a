// Package catalog lists the built-in adapters.
package catalog

import (
	"sort"

	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors/drive"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors/firebase"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors/gmail"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors/jobber"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors/matterport"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors/quickbooks"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors/sendgrid"
)

var all = []connectors.Info{
	drive.Info,
	firebase.Info,
	gmail.Info,
	jobber.Info,
	matterport.Info,
	quickbooks.Info,
	sendgrid.Info,
}

// All returns every built-in adapter sorted by name.
func All() []connectors.Info {
	out := append([]connectors.Info(nil), all...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Lookup finds a built-in adapter by name.
func Lookup(name string) (connectors.Info, bool) {
	for _, info := range all {
		if info.Name == name {
			return info, true
		}
	}
	return connectors.Info{}, false
}

// Names returns the adapter names, sorted.
func Names() []string {
	infos := All()
	out := make([]string, len(infos))
	for i, info := range infos {
		out[i] = info.Name
	}
	return out
}

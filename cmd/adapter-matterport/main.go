// Command adapter-matterport serves the Matterport tools over stdio or HTTP.
package main

import (
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors/matterport"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors/sdk"
)

var version = "dev"

func main() {
	sdk.Main(matterport.Name, version, matterport.Factory)
}

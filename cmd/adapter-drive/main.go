// Command adapter-drive serves the Google Drive tools over stdio or HTTP.
package main

import (
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors/drive"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors/sdk"
)

var version = "dev"

func main() {
	sdk.Main(drive.Name, version, drive.Factory)
}

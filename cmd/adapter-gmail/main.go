// Command adapter-gmail serves the Gmail tools over stdio or HTTP.
package main

import (
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors/gmail"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors/sdk"
)

var version = "dev"

func main() {
	sdk.Main(gmail.Name, version, gmail.Factory)
}

// Command adapter-firebase serves the Firebase tools over stdio or HTTP.
package main

import (
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors/firebase"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors/sdk"
)

var version = "dev"

func main() {
	sdk.Main(firebase.Name, version, firebase.Factory)
}

// Command adapter-jobber serves the Jobber tools over stdio or HTTP.
package main

import (
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors/jobber"
	"github.com/angelor888/DR-IT-ClaudeSDKSetup/pkg/connectors/sdk"
)

var version = "dev"

func main() {
	sdk.Main(jobber.Name, version, jobber.Factory)
}

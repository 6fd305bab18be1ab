// Copyright (c) 2026 Fraunhofer AISEC
// Fraunhofer-Gesellschaft zur Foerderung der angewandten Forschung e.V.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"
)

func newCommand() *cli.Command {
	return &cli.Command{
		Name: "epidstatus",
		Usage: "A tool to report the Intel SGX EPID attestation status of a platform " +
			"and to evaluate IAS attestation verification reports",
		Flags: newFlags(),
		Commands: []*cli.Command{
			{
				Name:   "report-status",
				Usage:  "Forward platform info to the platform software and print the attestation status",
				Action: reportStatusCmd,
			},
			{
				Name:   "check-update",
				Usage:  "Print which platform components require an update",
				Action: checkUpdateCmd,
			},
			{
				Name:   "verify-report",
				Usage:  "Evaluate an IAS attestation verification report and query the platform if outdated",
				Action: verifyReportCmd,
			},
			{
				Name:   "labels",
				Usage:  "List all known SGX status codes",
				Action: labelsCmd,
			},
			{
				Name:   "schema",
				Usage:  "Write JSON schemas of the configuration and result files",
				Action: schemaCmd,
			},
		},
	}
}

func main() {
	err := newCommand().Run(context.Background(), os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

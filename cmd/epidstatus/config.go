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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/exp/maps"

	"github.com/Fraunhofer-AISEC/epidstatus/epid"
	"github.com/Fraunhofer-AISEC/epidstatus/ias"
	"github.com/Fraunhofer-AISEC/epidstatus/internal"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

// Config is the configuration of the epidstatus tool. It is read from the
// optional JSON configuration file and overwritten by command line flags.
type Config struct {
	LogLevel        string  `json:"logLevel,omitempty"`
	LogFile         string  `json:"logFile,omitempty"`
	Backend         string  `json:"backend,omitempty" jsonschema:"enum=sdk,enum=sim"`
	SimStatus       string  `json:"simStatus,omitempty"`
	SimUpdate       []int32 `json:"simUpdate,omitempty" jsonschema:"minItems=3,maxItems=3"`
	SimConfigStatus uint32  `json:"simConfigStatus,omitempty"`
	PlatformInfo    string  `json:"platformInfo,omitempty"`
	Report          string  `json:"report,omitempty"`
	ReportSignature string  `json:"reportSignature,omitempty"`
	ReportCerts     string  `json:"reportCerts,omitempty"`
	IasCa           string  `json:"iasCa,omitempty"`
	SigningCn       string  `json:"signingCn,omitempty"`
	MaxAge          string  `json:"maxAge,omitempty"`
	AllowDebug      bool    `json:"allowDebug,omitempty"`
	Result          string  `json:"result,omitempty"`
	Serializer      string  `json:"serializer,omitempty" jsonschema:"enum=json,enum=cbor"`
	Out             string  `json:"out,omitempty"`

	maxAge     time.Duration
	serializer internal.Serializer
}

const (
	configFlag          = "config"
	logLevelFlag        = "log-level"
	logFileFlag         = "log-file"
	backendFlag         = "backend"
	simStatusFlag       = "sim-status"
	simUpdateFlag       = "sim-update"
	simConfigStatusFlag = "sim-config-status"
	platformInfoFlag    = "platform-info"
	reportFlag          = "report"
	reportSignatureFlag = "report-signature"
	reportCertsFlag     = "report-certs"
	iasCaFlag           = "ias-ca"
	signingCnFlag       = "signing-cn"
	maxAgeFlag          = "max-age"
	allowDebugFlag      = "allow-debug"
	resultFlag          = "result"
	serializerFlag      = "serializer"
	outFlag             = "out"
)

var (
	logLevels = map[string]logrus.Level{
		"panic": logrus.PanicLevel,
		"fatal": logrus.FatalLevel,
		"error": logrus.ErrorLevel,
		"warn":  logrus.WarnLevel,
		"info":  logrus.InfoLevel,
		"debug": logrus.DebugLevel,
		"trace": logrus.TraceLevel,
	}

	backends = []string{"sdk", "sim"}

	log = logrus.WithField("service", "epidstatus")
)

func newFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  configFlag,
			Usage: "JSON configuration file(s), comma-separated",
		},
		&cli.StringFlag{
			Name:  logLevelFlag,
			Usage: fmt.Sprintf("set log level. Possible: %v", strings.Join(maps.Keys(logLevels), ",")),
		},
		&cli.StringFlag{
			Name:  logFileFlag,
			Usage: "optional file to log to instead of stderr",
		},
		&cli.StringFlag{
			Name:  backendFlag,
			Usage: fmt.Sprintf("platform attestation service backend. Possible: %v", strings.Join(backends, ",")),
		},
		&cli.StringFlag{
			Name:  simStatusFlag,
			Usage: "status returned by the sim backend (SDK name or number)",
		},
		&cli.StringFlag{
			Name:  simUpdateFlag,
			Usage: "update info returned by the sim backend: ucode,csmeFw,psw",
		},
		&cli.UintFlag{
			Name:  simConfigStatusFlag,
			Usage: "config status returned by the sim backend for check-update",
		},
		&cli.StringFlag{
			Name:  platformInfoFlag,
			Usage: "platform info as hex (with or without TLV header), byte list or path to a file containing either",
		},
		&cli.StringFlag{
			Name:  reportFlag,
			Usage: "IAS attestation verification report (JSON file)",
		},
		&cli.StringFlag{
			Name:  reportSignatureFlag,
			Usage: "base64 encoded X-IASReport-Signature or path to a file containing it",
		},
		&cli.StringFlag{
			Name:  reportCertsFlag,
			Usage: "PEM file with the X-IASReport-Signing-Certificate chain",
		},
		&cli.StringFlag{
			Name:  iasCaFlag,
			Usage: "PEM file with the trusted IAS report signing root certificate(s)",
		},
		&cli.StringFlag{
			Name:  signingCnFlag,
			Usage: "expected common name of the report signing certificate",
		},
		&cli.StringFlag{
			Name:  maxAgeFlag,
			Usage: "maximum accepted age of an IAS report, e.g. 24h (default: unlimited)",
		},
		&cli.BoolFlag{
			Name:  allowDebugFlag,
			Usage: "accept IAS reports of enclaves running in debug mode",
		},
		&cli.StringFlag{
			Name:  resultFlag,
			Usage: "optional output file for the result",
		},
		&cli.StringFlag{
			Name:  serializerFlag,
			Usage: "serialization of the result file (json or cbor)",
		},
		&cli.StringFlag{
			Name:  outFlag,
			Usage: "output directory for the schema command",
		},
	}
}

func getConfig(cmd *cli.Command) (*Config, error) {

	// Initialize configuration with some default values
	c := &Config{
		Backend:    "sdk",
		Serializer: "json",
		Out:        "schema",
		SigningCn:  ias.SIGNING_CERT_CN,
	}

	// Obtain configuration from json configuration file
	if cmd.IsSet(configFlag) {
		files := strings.Split(cmd.String(configFlag), ",")
		for _, f := range files {
			data, err := os.ReadFile(f)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file %v: %w", f, err)
			}
			err = json.Unmarshal(data, c)
			if err != nil {
				return nil, fmt.Errorf("failed to parse config %v: %w", f, err)
			}
		}
	}

	// Overwrite configuration with values passed via command line
	if cmd.IsSet(logLevelFlag) {
		c.LogLevel = cmd.String(logLevelFlag)
	}
	if cmd.IsSet(logFileFlag) {
		c.LogFile = cmd.String(logFileFlag)
	}
	if cmd.IsSet(backendFlag) {
		c.Backend = cmd.String(backendFlag)
	}
	if cmd.IsSet(simStatusFlag) {
		c.SimStatus = cmd.String(simStatusFlag)
	}
	if cmd.IsSet(simUpdateFlag) {
		u, err := strToInt32(strings.Split(cmd.String(simUpdateFlag), ","))
		if err != nil {
			return nil, fmt.Errorf("failed to parse update info: %w", err)
		}
		c.SimUpdate = u
	}
	if cmd.IsSet(simConfigStatusFlag) {
		c.SimConfigStatus = uint32(cmd.Uint(simConfigStatusFlag))
	}
	if cmd.IsSet(platformInfoFlag) {
		c.PlatformInfo = cmd.String(platformInfoFlag)
	}
	if cmd.IsSet(reportFlag) {
		c.Report = cmd.String(reportFlag)
	}
	if cmd.IsSet(reportSignatureFlag) {
		c.ReportSignature = cmd.String(reportSignatureFlag)
	}
	if cmd.IsSet(reportCertsFlag) {
		c.ReportCerts = cmd.String(reportCertsFlag)
	}
	if cmd.IsSet(iasCaFlag) {
		c.IasCa = cmd.String(iasCaFlag)
	}
	if cmd.IsSet(signingCnFlag) {
		c.SigningCn = cmd.String(signingCnFlag)
	}
	if cmd.IsSet(maxAgeFlag) {
		c.MaxAge = cmd.String(maxAgeFlag)
	}
	if cmd.IsSet(allowDebugFlag) {
		c.AllowDebug = cmd.Bool(allowDebugFlag)
	}
	if cmd.IsSet(resultFlag) {
		c.Result = cmd.String(resultFlag)
	}
	if cmd.IsSet(serializerFlag) {
		c.Serializer = cmd.String(serializerFlag)
	}
	if cmd.IsSet(outFlag) {
		c.Out = cmd.String(outFlag)
	}

	// Configure the logger
	if c.LogFile != "" {
		lf, err := filepath.Abs(c.LogFile)
		if err != nil {
			return nil, fmt.Errorf("failed to get logfile path: %w", err)
		}
		file, err := os.OpenFile(lf, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0666)
		if err != nil {
			return nil, fmt.Errorf("failed to open logfile: %w", err)
		}
		logrus.SetOutput(file)
	}
	if c.LogLevel != "" {
		l, ok := logLevels[strings.ToLower(c.LogLevel)]
		if !ok {
			log.Warnf("LogLevel %v does not exist. Default to info level", c.LogLevel)
			l = logrus.InfoLevel
		}
		logrus.SetLevel(l)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}

	if c.MaxAge != "" {
		d, err := time.ParseDuration(c.MaxAge)
		if err != nil {
			return nil, fmt.Errorf("failed to parse max age: %w", err)
		}
		c.maxAge = d
	}

	if c.SimUpdate != nil && len(c.SimUpdate) != 3 {
		return nil, fmt.Errorf("update info requires 3 values, got %v", len(c.SimUpdate))
	}

	var err error
	c.serializer, err = internal.GetSerializer(c.Serializer)
	if err != nil {
		return nil, err
	}

	c.Print()

	return c, nil
}

func (c *Config) Print() {
	log.Debugf("Using the following configuration:")
	log.Debugf("\tLogLevel          : %v", c.LogLevel)
	log.Debugf("\tLogFile           : %v", c.LogFile)
	log.Debugf("\tBackend           : %v", c.Backend)
	if strings.EqualFold(c.Backend, "sim") {
		log.Debugf("\tSim Status        : %v", c.SimStatus)
		log.Debugf("\tSim Update        : %v", c.SimUpdate)
		log.Debugf("\tSim Config Status : 0x%x", c.SimConfigStatus)
	}
	log.Debugf("\tPlatform Info     : %v", c.PlatformInfo)
	log.Debugf("\tReport            : %v", c.Report)
	if c.ReportSignature != "" {
		log.Debugf("\tReport Certs      : %v", c.ReportCerts)
		log.Debugf("\tIAS CA            : %v", c.IasCa)
		log.Debugf("\tSigning CN        : %v", c.SigningCn)
	}
	log.Debugf("\tMax Age           : %v", c.MaxAge)
	log.Debugf("\tAllow Debug       : %v", c.AllowDebug)
	log.Debugf("\tResult            : %v", c.Result)
	log.Debugf("\tSerializer        : %v", c.Serializer)
}

// getService returns the platform attestation service selected by the backend
func getService(c *Config) (epid.Service, error) {
	switch strings.ToLower(c.Backend) {
	case "sdk":
		return epid.NewSdkService()
	case "sim":
		status := epid.StatusSuccess
		if c.SimStatus != "" {
			s, err := epid.ParseStatus(c.SimStatus)
			if err != nil {
				return nil, fmt.Errorf("failed to parse sim status: %w", err)
			}
			status = s
		}
		info := epid.UpdateInfo{}
		if len(c.SimUpdate) == 3 {
			info = epid.UpdateInfo{
				UcodeUpdate:  c.SimUpdate[0],
				CsmeFwUpdate: c.SimUpdate[1],
				PswUpdate:    c.SimUpdate[2],
			}
		}
		svc := epid.NewSimService(status, info)
		svc.ConfigStatus = c.SimConfigStatus
		return svc, nil
	default:
		return nil, fmt.Errorf("backend %v is not implemented. Possible: %v", c.Backend,
			strings.Join(backends, ","))
	}
}

func strToInt32(strs []string) ([]int32, error) {
	ints := make([]int32, len(strs))
	for i, s := range strs {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 0, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", s, err)
		}
		ints[i] = int32(n)
	}
	return ints, nil
}

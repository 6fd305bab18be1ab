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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/Fraunhofer-AISEC/epidstatus/ias"
	"github.com/invopop/jsonschema"
	"github.com/urfave/cli/v3"
)

var schemaObjects = []any{
	Config{},
	StatusResult{},
	ias.Result{},
	ias.Report{},
}

func schemaCmd(ctx context.Context, cmd *cli.Command) error {
	c, err := getConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to get config: %w", err)
	}
	return writeSchemas(c.Out)
}

func writeSchemas(dir string) error {
	err := os.MkdirAll(dir, os.ModePerm)
	if err != nil {
		return fmt.Errorf("failed to create directory %v: %w", dir, err)
	}

	r := &jsonschema.Reflector{
		ExpandedStruct:            false,
		Anonymous:                 true,
		DoNotReference:            false,
		AllowAdditionalProperties: true,
	}

	for _, o := range schemaObjects {
		schema := r.Reflect(o)
		data, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal schema: %w", err)
		}

		f := filepath.Join(dir, fmt.Sprintf("%v.json", getName(o)))
		log.Debugf("Writing schema %v", f)

		err = os.WriteFile(f, data, 0644)
		if err != nil {
			return fmt.Errorf("failed to write file: %w", err)
		}
	}

	return nil
}

func getName(v any) string {
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

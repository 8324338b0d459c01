/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/projectbeskar/smctl/api/compute"
)

// validate is shared by all commands; building a validator is expensive
var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrInvalidParameter is wrapped by every parameter validation failure
var ErrInvalidParameter = errors.New("invalid parameter")

type nameParams struct {
	Name string `validate:"required,max=255,excludesall=/?#"`
}

type serviceParams struct {
	Service string `validate:"required,max=63,excludesall=/?#"`
}

type slotParams struct {
	Service string `validate:"required,max=63,excludesall=/?#"`
	Slot    string `validate:"required,oneof=Production Staging"`
}

type certificateParams struct {
	Service    string `validate:"required,max=63,excludesall=/?#"`
	Algorithm  string `validate:"required,alphanum"`
	Thumbprint string `validate:"required,hexadecimal"`
}

type vmParams struct {
	Service string `validate:"required,max=63,excludesall=/?#"`
	Name    string `validate:"required,max=64,excludesall=/?#"`
	Slot    string `validate:"required,oneof=Production Staging"`
}

type importParams struct {
	Service    string `validate:"required,max=63,excludesall=/?#"`
	Deployment string `validate:"required,excludesall=/?#"`
	File       string `validate:"required,file"`
}

// checkParams validates p and turns validator output into one readable error
func checkParams(p any) error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s (got %q)", strings.ToLower(fe.Field()), fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s (got %q)", strings.ToLower(fe.Field()), fe.Tag(), fe.Value()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidParameter, strings.Join(msgs, "; "))
}

// canonicalSlot accepts a slot in any case, so "staging" selects Staging
func canonicalSlot(slot string) compute.DeploymentSlot {
	return compute.DeploymentSlot(cases.Title(language.English).String(strings.TrimSpace(slot)))
}
